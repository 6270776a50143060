package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rematch-liga/league-system/models"
)

var (
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrInvitationUserInvalid = errors.New("invitation user conflict or invalid")
	ErrInvitationTeamInvalid = errors.New("invitation team conflict or invalid")
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.TeamInvitation) error
	GetByID(ctx context.Context, id int) (*models.TeamInvitation, error)
	ListPendingByUser(ctx context.Context, userID int) ([]*models.TeamInvitation, error)
	UpdateStatus(ctx context.Context, id int, status models.InvitationStatus) error
}

type postgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *sql.DB) InvitationRepository {
	return &postgresInvitationRepository{db: db}
}

func (r *postgresInvitationRepository) Create(ctx context.Context, invitation *models.TeamInvitation) error {
	query := `
		INSERT INTO team_invitations (team_id, user_id, invited_by, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invitation.TeamID,
		invitation.UserID,
		invitation.InvitedBy,
		invitation.Status,
	).Scan(&invitation.ID, &invitation.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "team_invitations_team_id_fkey":
				return ErrInvitationTeamInvalid
			case "team_invitations_user_id_fkey", "team_invitations_invited_by_fkey":
				return ErrInvitationUserInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresInvitationRepository) scanInvitation(row interface{ Scan(...interface{}) error }) (*models.TeamInvitation, error) {
	var inv models.TeamInvitation
	err := row.Scan(&inv.ID, &inv.TeamID, &inv.UserID, &inv.InvitedBy, &inv.Status, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *postgresInvitationRepository) GetByID(ctx context.Context, id int) (*models.TeamInvitation, error) {
	query := `
		SELECT id, team_id, user_id, invited_by, status, created_at
		FROM team_invitations
		WHERE id = $1`
	return r.scanInvitation(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresInvitationRepository) ListPendingByUser(ctx context.Context, userID int) ([]*models.TeamInvitation, error) {
	query := `
		SELECT id, team_id, user_id, invited_by, status, created_at
		FROM team_invitations
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, models.InvitationPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]*models.TeamInvitation, 0)
	for rows.Next() {
		inv, scanErr := r.scanInvitation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		invitations = append(invitations, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *postgresInvitationRepository) UpdateStatus(ctx context.Context, id int, status models.InvitationStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE team_invitations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInvitationNotFound)
}
