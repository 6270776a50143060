package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	// PromoteRole is an administrator changing another user's role directly.
	PromoteRole(ctx context.Context, actor models.Principal, userID int, role models.UserRole) error
	RequestCaptainRole(ctx context.Context, actor models.Principal, reason *string) (*models.CaptainRequest, error)
	ListCaptainRequests(ctx context.Context, actor models.Principal) ([]*models.CaptainRequest, error)
	ResolveCaptainRequest(ctx context.Context, actor models.Principal, requestID int, approve bool) error
}

type userService struct {
	userRepo    repositories.UserRepository
	requestRepo repositories.CaptainRequestRepository
	notifier    NotificationService
}

func NewUserService(
	userRepo repositories.UserRepository,
	requestRepo repositories.CaptainRequestRepository,
	notifier NotificationService,
) UserService {
	return &userService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		notifier:    notifier,
	}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return user, nil
}

func (s *userService) PromoteRole(ctx context.Context, actor models.Principal, userID int, role models.UserRole) error {
	if !actor.IsAdmin() {
		return ErrAdminActionForbidden
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update role for user %d: %w", userID, err)
	}
	return nil
}

func (s *userService) RequestCaptainRole(ctx context.Context, actor models.Principal, reason *string) (*models.CaptainRequest, error) {
	if actor.Role != models.RoleUser {
		return nil, ErrForbiddenOperation
	}

	request := &models.CaptainRequest{
		UserID: actor.UserID,
		Reason: reason,
		Status: models.CaptainRequestPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create captain request: %w", err)
	}
	return request, nil
}

func (s *userService) ListCaptainRequests(ctx context.Context, actor models.Principal) ([]*models.CaptainRequest, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminActionForbidden
	}
	return s.requestRepo.ListPending(ctx)
}

func (s *userService) ResolveCaptainRequest(ctx context.Context, actor models.Principal, requestID int, approve bool) error {
	if !actor.IsAdmin() {
		return ErrAdminActionForbidden
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrCaptainRequestNotFound) {
			return ErrCaptainRequestNotFound
		}
		return fmt.Errorf("failed to load captain request %d: %w", requestID, err)
	}
	if request.Status != models.CaptainRequestPending {
		return ErrRequestNotPending
	}

	status := models.CaptainRequestRejected
	if approve {
		status = models.CaptainRequestApproved
	}
	if err := s.requestRepo.UpdateStatus(ctx, request.ID, status); err != nil {
		return fmt.Errorf("failed to update captain request %d: %w", request.ID, err)
	}

	if approve {
		if err := s.userRepo.UpdateRole(ctx, request.UserID, models.RoleCaptain); err != nil {
			return fmt.Errorf("failed to promote user %d: %w", request.UserID, err)
		}
	}

	s.notifier.NotifyCaptainRequestResolved(ctx, request.UserID, approve)
	return nil
}
