package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

type CreateLeagueInput struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	PointsPerWin  int     `json:"points_per_win"`
	PointsPerDraw int     `json:"points_per_draw"`
	PointsPerLoss int     `json:"points_per_loss"`
}

type LeagueService interface {
	Create(ctx context.Context, actor models.Principal, input CreateLeagueInput) (*models.League, error)
	ListActive(ctx context.Context) ([]*models.League, error)
	// Join creates the zeroed membership row for a team. Idempotent: joining
	// an already-joined league changes nothing.
	Join(ctx context.Context, actor models.Principal, leagueID, teamID int) error
	// GetStandings projects the ranked table for a league. Pure read; ties
	// on points break by wins, then team name, and positions are distinct
	// sequential ranks starting at 1.
	GetStandings(ctx context.Context, leagueID int) ([]models.LeagueStanding, error)
}

type leagueService struct {
	leagueRepo      repositories.LeagueRepository
	participantRepo repositories.LeagueParticipantRepository
	teamRepo        repositories.TeamRepository
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	participantRepo repositories.LeagueParticipantRepository,
	teamRepo repositories.TeamRepository,
) LeagueService {
	return &leagueService{
		leagueRepo:      leagueRepo,
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
	}
}

func (s *leagueService) Create(ctx context.Context, actor models.Principal, input CreateLeagueInput) (*models.League, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminActionForbidden
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: league name is required", ErrValidationFailed)
	}
	if input.PointsPerWin < 0 || input.PointsPerDraw < 0 || input.PointsPerLoss < 0 {
		return nil, ErrLeagueInvalidPolicy
	}

	league := &models.League{
		Name:          input.Name,
		Description:   input.Description,
		PointsPerWin:  input.PointsPerWin,
		PointsPerDraw: input.PointsPerDraw,
		PointsPerLoss: input.PointsPerLoss,
		IsActive:      true,
	}
	if err := s.leagueRepo.Create(ctx, league); err != nil {
		if errors.Is(err, repositories.ErrLeagueNameConflict) {
			return nil, ErrLeagueNameConflict
		}
		return nil, fmt.Errorf("failed to create league: %w", err)
	}
	return league, nil
}

func (s *leagueService) ListActive(ctx context.Context) ([]*models.League, error) {
	return s.leagueRepo.ListActive(ctx)
}

func (s *leagueService) Join(ctx context.Context, actor models.Principal, leagueID, teamID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if !actor.IsAdmin() && team.CaptainID != actor.UserID {
		return ErrCaptainActionForbidden
	}
	if !team.IsActive {
		return ErrTeamInactive
	}

	league, err := s.leagueRepo.GetByID(ctx, nil, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}
	if !league.IsActive {
		return ErrLeagueInactive
	}

	if err := s.participantRepo.Add(ctx, league.ID, team.ID); err != nil {
		return fmt.Errorf("failed to join league %d: %w", league.ID, err)
	}
	return nil
}

func (s *leagueService) GetStandings(ctx context.Context, leagueID int) ([]models.LeagueStanding, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}

	rows, err := s.participantRepo.ListStandings(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for league %d: %w", leagueID, err)
	}

	standings := make([]models.LeagueStanding, len(rows))
	for i, row := range rows {
		entry := *row
		entry.Position = i + 1
		standings[i] = entry
	}
	return standings, nil
}
