package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
	"github.com/rematch-liga/league-system/storage"
)

type CreateTeamInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Platform    models.Platform `json:"platform"`
}

type TeamService interface {
	Create(ctx context.Context, actor models.Principal, input CreateTeamInput) (*models.Team, error)
	GetWithMembers(ctx context.Context, teamID int) (*models.Team, error)
	ListActive(ctx context.Context) ([]*models.Team, error)
	ListMine(ctx context.Context, actor models.Principal) ([]*models.Team, error)
	UploadCrest(ctx context.Context, actor models.Principal, teamID int, contentType string, reader io.Reader) (*models.Team, error)
	RemoveMember(ctx context.Context, actor models.Principal, teamID, userID int) error
	Deactivate(ctx context.Context, actor models.Principal, teamID int) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *teamService) Create(ctx context.Context, actor models.Principal, input CreateTeamInput) (*models.Team, error) {
	if !actor.CanCaptain() {
		return nil, ErrForbiddenOperation
	}
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}
	if !input.Platform.Valid() {
		return nil, ErrInvalidPlatform
	}

	team := &models.Team{
		Name:        input.Name,
		Description: input.Description,
		Platform:    input.Platform,
		CaptainID:   actor.UserID,
		IsActive:    true,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	// The captain is always the first roster member.
	if err := s.teamRepo.AddMember(ctx, team.ID, actor.UserID); err != nil {
		return nil, fmt.Errorf("failed to add captain to roster: %w", err)
	}
	return team, nil
}

func (s *teamService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	return team, nil
}

func (s *teamService) GetWithMembers(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}
	team.Members = members
	s.populateImageURL(team)
	return team, nil
}

func (s *teamService) ListActive(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.populateImageURL(team)
	}
	return teams, nil
}

func (s *teamService) ListMine(ctx context.Context, actor models.Principal) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.populateImageURL(team)
	}
	return teams, nil
}

func (s *teamService) UploadCrest(ctx context.Context, actor models.Principal, teamID int, contentType string, reader io.Reader) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && team.CaptainID != actor.UserID {
		return nil, ErrCaptainActionForbidden
	}

	key := fmt.Sprintf("teams/%d/crest", team.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload crest for team %d: %w", team.ID, err)
	}

	if err := s.teamRepo.UpdateImageKey(ctx, team.ID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store crest key for team %d: %w", team.ID, err)
	}
	team.ImageKey = &result.Key
	s.populateImageURL(team)
	return team, nil
}

func (s *teamService) RemoveMember(ctx context.Context, actor models.Principal, teamID, userID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && team.CaptainID != actor.UserID {
		return ErrCaptainActionForbidden
	}
	if userID == team.CaptainID {
		return fmt.Errorf("%w: cannot remove the team captain", ErrValidationFailed)
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to remove member %d from team %d: %w", userID, teamID, err)
	}
	return nil
}

func (s *teamService) Deactivate(ctx context.Context, actor models.Principal, teamID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && team.CaptainID != actor.UserID {
		return ErrCaptainActionForbidden
	}
	return s.teamRepo.SetActive(ctx, teamID, false)
}

func (s *teamService) populateImageURL(team *models.Team) {
	if team.ImageKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.ImageKey)
	if url != "" {
		team.ImageURL = &url
	}
}
