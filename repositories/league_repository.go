package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rematch-liga/league-system/models"
)

var (
	ErrLeagueNotFound     = errors.New("league not found")
	ErrLeagueNameConflict = errors.New("league name is already in use")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	// GetByID accepts an executor so the settlement transaction can read the
	// scoring policy inside its own transactional scope. Pass nil to use the
	// pool directly.
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error)
	ListActive(ctx context.Context) ([]*models.League, error)
	CountActive(ctx context.Context) (int, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (name, description, points_per_win, points_per_draw, points_per_loss, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		league.Name,
		league.Description,
		league.PointsPerWin,
		league.PointsPerDraw,
		league.PointsPerLoss,
		league.IsActive,
	).Scan(&league.ID, &league.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrLeagueNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresLeagueRepository) scanLeague(row interface{ Scan(...interface{}) error }) (*models.League, error) {
	var l models.League
	err := row.Scan(
		&l.ID, &l.Name, &l.Description,
		&l.PointsPerWin, &l.PointsPerDraw, &l.PointsPerLoss,
		&l.IsActive, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, description, points_per_win, points_per_draw, points_per_loss, is_active, created_at
		FROM leagues
		WHERE id = $1`
	return r.scanLeague(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueRepository) ListActive(ctx context.Context) ([]*models.League, error) {
	query := `
		SELECT id, name, description, points_per_win, points_per_draw, points_per_loss, is_active, created_at
		FROM leagues
		WHERE is_active = TRUE
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		l, scanErr := r.scanLeague(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		leagues = append(leagues, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *postgresLeagueRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leagues WHERE is_active = TRUE`).Scan(&count)
	return count, err
}
