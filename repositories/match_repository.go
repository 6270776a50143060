package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/rematch-liga/league-system/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchTeamInvalid   = errors.New("match team conflict or invalid")
	ErrMatchNotUpdatable  = errors.New("match is not in an updatable status")
	ErrMatchLeagueInvalid = errors.New("match league conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// MarkCompleted flips a match into the completed terminal status with its
	// outcome. The UPDATE is guarded on the prior status, so a match that is
	// already terminal is left untouched and ErrMatchNotUpdatable is
	// returned: this is what makes settlement a one-time side effect even
	// under concurrent completion attempts.
	MarkCompleted(ctx context.Context, exec SQLExecutor, id int, winnerID *int, isDraw bool) error
	// UpdateStatus moves a match from one non-terminal status to another,
	// guarded on the expected prior status.
	UpdateStatus(ctx context.Context, id int, from, to models.MatchStatus) error
	ListByTeam(ctx context.Context, teamID int) ([]*models.Match, error)
	ListUpcoming(ctx context.Context, limit int) ([]*models.Match, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Match, error)
	CountByStatus(ctx context.Context, status models.MatchStatus) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, league_id, team1_id, team2_id, scheduled_date, status, winner_id, is_draw, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, league_id, team1_id, team2_id, scheduled_date, status, is_draw)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		match.TournamentID,
		match.LeagueID,
		match.Team1ID,
		match.Team2ID,
		match.ScheduledDate,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.LeagueID,
		&m.Team1ID, &m.Team2ID, &m.ScheduledDate,
		&m.Status, &m.WinnerID, &m.IsDraw, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) MarkCompleted(ctx context.Context, exec SQLExecutor, id int, winnerID *int, isDraw bool) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		UPDATE matches
		SET status = $1, winner_id = $2, is_draw = $3
		WHERE id = $4 AND status IN ($5, $6)`

	result, err := executor.ExecContext(ctx, query,
		models.MatchCompleted, winnerID, isDraw,
		id, models.MatchScheduled, models.MatchPostponed,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotUpdatable)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, from, to models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotUpdatable)
}

func (r *postgresMatchRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE team1_id = $1 OR team2_id = $1
		ORDER BY scheduled_date DESC`
	return r.queryMatches(ctx, query, teamID)
}

func (r *postgresMatchRepository) ListUpcoming(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE status = $1
		ORDER BY scheduled_date ASC
		LIMIT $2`
	return r.queryMatches(ctx, query, models.MatchScheduled, limit)
}

func (r *postgresMatchRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE scheduled_date >= $1 AND scheduled_date <= $2
		ORDER BY scheduled_date ASC`
	return r.queryMatches(ctx, query, from, to)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByStatus(ctx context.Context, status models.MatchStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE status = $1`, status).Scan(&count)
	return count, err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchTeamInvalid
		case "matches_league_id_fkey":
			return ErrMatchLeagueInvalid
		}
	}
	return err
}
