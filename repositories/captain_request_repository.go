package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rematch-liga/league-system/models"
)

var ErrCaptainRequestNotFound = errors.New("captain request not found")

type CaptainRequestRepository interface {
	Create(ctx context.Context, request *models.CaptainRequest) error
	GetByID(ctx context.Context, id int) (*models.CaptainRequest, error)
	ListPending(ctx context.Context) ([]*models.CaptainRequest, error)
	UpdateStatus(ctx context.Context, id int, status models.CaptainRequestStatus) error
	CountPending(ctx context.Context) (int, error)
}

type postgresCaptainRequestRepository struct {
	db *sql.DB
}

func NewPostgresCaptainRequestRepository(db *sql.DB) CaptainRequestRepository {
	return &postgresCaptainRequestRepository{db: db}
}

func (r *postgresCaptainRequestRepository) Create(ctx context.Context, request *models.CaptainRequest) error {
	query := `
		INSERT INTO captain_requests (user_id, reason, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		request.UserID,
		request.Reason,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *postgresCaptainRequestRepository) scanRequest(row interface{ Scan(...interface{}) error }) (*models.CaptainRequest, error) {
	var req models.CaptainRequest
	err := row.Scan(&req.ID, &req.UserID, &req.Reason, &req.Status, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaptainRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *postgresCaptainRequestRepository) GetByID(ctx context.Context, id int) (*models.CaptainRequest, error) {
	query := `SELECT id, user_id, reason, status, created_at FROM captain_requests WHERE id = $1`
	return r.scanRequest(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresCaptainRequestRepository) ListPending(ctx context.Context) ([]*models.CaptainRequest, error) {
	query := `
		SELECT id, user_id, reason, status, created_at
		FROM captain_requests
		WHERE status = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, models.CaptainRequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*models.CaptainRequest, 0)
	for rows.Next() {
		req, scanErr := r.scanRequest(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		requests = append(requests, req)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *postgresCaptainRequestRepository) UpdateStatus(ctx context.Context, id int, status models.CaptainRequestStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE captain_requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCaptainRequestNotFound)
}

func (r *postgresCaptainRequestRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM captain_requests WHERE status = $1`, models.CaptainRequestPending).Scan(&count)
	return count, err
}
