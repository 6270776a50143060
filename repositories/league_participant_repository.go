package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rematch-liga/league-system/models"
)

var (
	ErrLeagueMembershipNotFound = errors.New("team is not a member of this league")
	ErrLeagueMembershipInvalid  = errors.New("league membership references an unknown league or team")
)

type LeagueParticipantRepository interface {
	// Add creates the zeroed accumulator row for a (league, team) pair.
	// Joining twice is a no-op: the row is never duplicated or reset.
	Add(ctx context.Context, leagueID, teamID int) error
	Get(ctx context.Context, leagueID, teamID int) (*models.LeagueParticipant, error)
	// ApplyResult credits one team's share of a settled match as a single
	// additive UPDATE. Concurrent settlements against the same row serialize
	// on the database; there is no read-modify-write to lose. A zero row
	// count means the team has no membership row in the league.
	ApplyResult(ctx context.Context, exec SQLExecutor, leagueID, teamID int, delta models.ResultDelta) error
	// ListStandings reads the ranked view: points DESC, wins DESC, team name
	// ASC. The order is total, so repeated reads with no settlement in
	// between are identical.
	ListStandings(ctx context.Context, leagueID int) ([]*models.LeagueStanding, error)
}

type postgresLeagueParticipantRepository struct {
	db *sql.DB
}

func NewPostgresLeagueParticipantRepository(db *sql.DB) LeagueParticipantRepository {
	return &postgresLeagueParticipantRepository{db: db}
}

func (r *postgresLeagueParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeagueParticipantRepository) Add(ctx context.Context, leagueID, teamID int) error {
	query := `
		INSERT INTO league_participants (league_id, team_id)
		VALUES ($1, $2)
		ON CONFLICT (league_id, team_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, leagueID, teamID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrLeagueMembershipInvalid
		}
		return err
	}
	return nil
}

func (r *postgresLeagueParticipantRepository) Get(ctx context.Context, leagueID, teamID int) (*models.LeagueParticipant, error) {
	query := `
		SELECT id, league_id, team_id, points, matches_played, wins, draws, losses, joined_at
		FROM league_participants
		WHERE league_id = $1 AND team_id = $2`

	var p models.LeagueParticipant
	err := r.db.QueryRowContext(ctx, query, leagueID, teamID).Scan(
		&p.ID, &p.LeagueID, &p.TeamID,
		&p.Points, &p.MatchesPlayed, &p.Wins, &p.Draws, &p.Losses,
		&p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueMembershipNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresLeagueParticipantRepository) ApplyResult(ctx context.Context, exec SQLExecutor, leagueID, teamID int, delta models.ResultDelta) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE league_participants SET
			points = points + $1,
			matches_played = matches_played + 1,
			wins = wins + $2,
			draws = draws + $3,
			losses = losses + $4
		WHERE league_id = $5 AND team_id = $6`

	result, err := executor.ExecContext(ctx, query,
		delta.Points, delta.Wins, delta.Draws, delta.Losses,
		leagueID, teamID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueMembershipNotFound)
}

func (r *postgresLeagueParticipantRepository) ListStandings(ctx context.Context, leagueID int) ([]*models.LeagueStanding, error) {
	query := `
		SELECT t.id, t.name, t.description, t.platform, t.captain_id, t.is_active, t.image_key, t.created_at,
		       lp.points, lp.matches_played, lp.wins, lp.draws, lp.losses
		FROM league_participants lp
		JOIN teams t ON t.id = lp.team_id
		WHERE lp.league_id = $1
		ORDER BY lp.points DESC, lp.wins DESC, t.name ASC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.LeagueStanding, 0)
	for rows.Next() {
		var s models.LeagueStanding
		if scanErr := rows.Scan(
			&s.Team.ID, &s.Team.Name, &s.Team.Description, &s.Team.Platform,
			&s.Team.CaptainID, &s.Team.IsActive, &s.Team.ImageKey, &s.Team.CreatedAt,
			&s.Points, &s.MatchesPlayed, &s.Wins, &s.Draws, &s.Losses,
		); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
