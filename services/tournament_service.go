package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

type CreateTournamentInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsPublic    bool      `json:"is_public"`
	MaxTeams    int       `json:"max_teams"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type TournamentService interface {
	Create(ctx context.Context, actor models.Principal, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	// Register enrolls a team while registration is open and capacity remains.
	Register(ctx context.Context, actor models.Principal, tournamentID, teamID int) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
	}
}

func (s *tournamentService) Create(ctx context.Context, actor models.Principal, input CreateTournamentInput) (*models.Tournament, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminActionForbidden
	}
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if input.MaxTeams < 2 {
		return nil, ErrInvalidCapacity
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	tournament := &models.Tournament{
		Name:         input.Name,
		Description:  input.Description,
		IsPublic:     input.IsPublic,
		MaxTeams:     input.MaxTeams,
		CurrentPhase: models.PhaseRegistration,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) Register(ctx context.Context, actor models.Principal, tournamentID, teamID int) error {
	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if tournament.CurrentPhase != models.PhaseRegistration {
		return ErrForbiddenOperation
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if !team.IsActive {
		return ErrTeamInactive
	}
	if !actor.IsAdmin() && team.CaptainID != actor.UserID {
		return ErrCaptainActionForbidden
	}

	count, err := s.tournamentRepo.CountParticipants(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to count participants for tournament %d: %w", tournamentID, err)
	}
	if count >= tournament.MaxTeams {
		return ErrTournamentFull
	}

	if err := s.tournamentRepo.AddParticipant(ctx, tournamentID, teamID); err != nil {
		return fmt.Errorf("failed to register team %d in tournament %d: %w", teamID, tournamentID, err)
	}
	return nil
}
