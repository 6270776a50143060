package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

type InvitationService interface {
	Invite(ctx context.Context, actor models.Principal, teamID, userID int) (*models.TeamInvitation, error)
	ListMine(ctx context.Context, actor models.Principal) ([]*models.TeamInvitation, error)
	// Resolve accepts or rejects a pending invitation. Only the invitee may
	// resolve it; acceptance adds them to the roster.
	Resolve(ctx context.Context, actor models.Principal, invitationID int, accept bool) error
}

type invitationService struct {
	invitationRepo repositories.InvitationRepository
	teamRepo       repositories.TeamRepository
	userRepo       repositories.UserRepository
	notifier       NotificationService
}

func NewInvitationService(
	invitationRepo repositories.InvitationRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	notifier NotificationService,
) InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		notifier:       notifier,
	}
}

func (s *invitationService) Invite(ctx context.Context, actor models.Principal, teamID, userID int) (*models.TeamInvitation, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if !actor.IsAdmin() && team.CaptainID != actor.UserID {
		return nil, ErrCaptainActionForbidden
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	invitation := &models.TeamInvitation{
		TeamID:    teamID,
		UserID:    userID,
		InvitedBy: actor.UserID,
		Status:    models.InvitationPending,
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.notifier.NotifyInvitation(ctx, invitation)
	return invitation, nil
}

func (s *invitationService) ListMine(ctx context.Context, actor models.Principal) ([]*models.TeamInvitation, error) {
	return s.invitationRepo.ListPendingByUser(ctx, actor.UserID)
}

func (s *invitationService) Resolve(ctx context.Context, actor models.Principal, invitationID int, accept bool) error {
	invitation, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to load invitation %d: %w", invitationID, err)
	}
	if invitation.UserID != actor.UserID {
		return ErrInvitationNotFound
	}
	if invitation.Status != models.InvitationPending {
		return ErrInvitationNotPending
	}

	status := models.InvitationRejected
	if accept {
		status = models.InvitationAccepted
	}
	if err := s.invitationRepo.UpdateStatus(ctx, invitation.ID, status); err != nil {
		return fmt.Errorf("failed to update invitation %d: %w", invitation.ID, err)
	}

	if accept {
		if err := s.teamRepo.AddMember(ctx, invitation.TeamID, invitation.UserID); err != nil {
			return fmt.Errorf("failed to add member to team %d: %w", invitation.TeamID, err)
		}
	}
	return nil
}
