package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

// ResultNotifier is the fire-and-forget side channel for match events.
// Implementations must swallow their own failures: a lost notification
// never affects a settlement that has already committed.
type ResultNotifier interface {
	MatchScheduled(ctx context.Context, match *models.Match)
	MatchCompleted(ctx context.Context, match *models.Match)
}

type ScheduleMatchInput struct {
	TournamentID  *int      `json:"tournament_id"`
	LeagueID      *int      `json:"league_id"`
	Team1ID       int       `json:"team1_id"`
	Team2ID       int       `json:"team2_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
}

// MatchOutcome is the resolved result of a completed match: exactly one of
// WinnerID or IsDraw must be set.
type MatchOutcome struct {
	WinnerID *int `json:"winner_id"`
	IsDraw   bool `json:"is_draw"`
}

type MatchService interface {
	Schedule(ctx context.Context, actor models.Principal, input ScheduleMatchInput) (*models.Match, error)
	Complete(ctx context.Context, actor models.Principal, matchID int, outcome MatchOutcome) (*models.Match, error)
	ChangeStatus(ctx context.Context, actor models.Principal, matchID int, to models.MatchStatus) (*models.Match, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListUpcoming(ctx context.Context, limit int) ([]*models.Match, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Match, error)
	ListCalendar(ctx context.Context, from, to time.Time) ([]*models.Match, error)
}

type matchService struct {
	txManager       repositories.TxManager
	matchRepo       repositories.MatchRepository
	teamRepo        repositories.TeamRepository
	leagueRepo      repositories.LeagueRepository
	participantRepo repositories.LeagueParticipantRepository
	notifier        ResultNotifier
	logger          *slog.Logger
}

func NewMatchService(
	txManager repositories.TxManager,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	leagueRepo repositories.LeagueRepository,
	participantRepo repositories.LeagueParticipantRepository,
	notifier ResultNotifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txManager:       txManager,
		matchRepo:       matchRepo,
		teamRepo:        teamRepo,
		leagueRepo:      leagueRepo,
		participantRepo: participantRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

func (s *matchService) Schedule(ctx context.Context, actor models.Principal, input ScheduleMatchInput) (*models.Match, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminActionForbidden
	}
	if input.Team1ID == input.Team2ID {
		return nil, ErrTeamsNotDistinct
	}
	if input.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: scheduled date is required", ErrValidationFailed)
	}

	for _, teamID := range []int{input.Team1ID, input.Team2ID} {
		team, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
		}
		if !team.IsActive {
			return nil, ErrTeamInactive
		}
	}

	if input.LeagueID != nil {
		if _, err := s.leagueRepo.GetByID(ctx, nil, *input.LeagueID); err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return nil, ErrLeagueNotFound
			}
			return nil, fmt.Errorf("failed to load league %d: %w", *input.LeagueID, err)
		}
	}

	match := &models.Match{
		TournamentID:  input.TournamentID,
		LeagueID:      input.LeagueID,
		Team1ID:       input.Team1ID,
		Team2ID:       input.Team2ID,
		ScheduledDate: input.ScheduledDate,
		Status:        models.MatchScheduled,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.notifier.MatchScheduled(ctx, match)
	return match, nil
}

// Complete transitions a match into the completed terminal status and, for
// league-bound matches, settles the result against both membership rows.
// The status flip and both point increments share one transaction: either
// the whole settlement lands or none of it does, and a match that already
// reached a terminal status is rejected without touching standings.
func (s *matchService) Complete(ctx context.Context, actor models.Principal, matchID int, outcome MatchOutcome) (*models.Match, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminActionForbidden
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if match.Status.Terminal() {
		return nil, ErrMatchAlreadySettled
	}
	if err := validateOutcome(match, outcome); err != nil {
		return nil, err
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Guarded on the prior status: if another completion won the race,
		// zero rows are updated and the settlement is abandoned before any
		// points move.
		if err := s.matchRepo.MarkCompleted(ctx, exec, match.ID, outcome.WinnerID, outcome.IsDraw); err != nil {
			if errors.Is(err, repositories.ErrMatchNotUpdatable) {
				return ErrMatchAlreadySettled
			}
			return fmt.Errorf("failed to complete match %d: %w", match.ID, err)
		}

		if match.LeagueID == nil {
			return nil
		}

		league, err := s.leagueRepo.GetByID(ctx, exec, *match.LeagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return fmt.Errorf("failed to load league %d: %w", *match.LeagueID, err)
		}

		for _, share := range settlementDeltas(league, match, outcome) {
			if err := s.participantRepo.ApplyResult(ctx, exec, league.ID, share.teamID, share.delta); err != nil {
				if errors.Is(err, repositories.ErrLeagueMembershipNotFound) {
					return fmt.Errorf("%w: team %d", ErrTeamNotInLeague, share.teamID)
				}
				return fmt.Errorf("failed to apply result for team %d: %w", share.teamID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	match.Status = models.MatchCompleted
	match.WinnerID = outcome.WinnerID
	match.IsDraw = outcome.IsDraw

	s.logger.Info("match settled",
		slog.Int("match_id", match.ID),
		slog.Bool("draw", outcome.IsDraw),
	)
	s.notifier.MatchCompleted(ctx, match)
	return match, nil
}

func (s *matchService) ChangeStatus(ctx context.Context, actor models.Principal, matchID int, to models.MatchStatus) (*models.Match, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminActionForbidden
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, to)
	}
	if to == models.MatchCompleted {
		// Completion carries an outcome and settlement; it has its own path.
		return nil, ErrOutcomeRequired
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if !match.CanTransition(to) {
		return nil, ErrInvalidMatchTransition
	}

	if err := s.matchRepo.UpdateStatus(ctx, match.ID, match.Status, to); err != nil {
		if errors.Is(err, repositories.ErrMatchNotUpdatable) {
			return nil, ErrInvalidMatchTransition
		}
		return nil, fmt.Errorf("failed to update match %d status: %w", match.ID, err)
	}

	match.Status = to
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListUpcoming(ctx context.Context, limit int) ([]*models.Match, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.matchRepo.ListUpcoming(ctx, limit)
}

func (s *matchService) ListByTeam(ctx context.Context, teamID int) ([]*models.Match, error) {
	return s.matchRepo.ListByTeam(ctx, teamID)
}

func (s *matchService) ListCalendar(ctx context.Context, from, to time.Time) ([]*models.Match, error) {
	if !to.After(from) {
		return nil, ErrInvalidDateRange
	}
	return s.matchRepo.ListByDateRange(ctx, from, to)
}

func validateOutcome(match *models.Match, outcome MatchOutcome) error {
	if outcome.WinnerID != nil && outcome.IsDraw {
		return ErrOutcomeConflict
	}
	if outcome.WinnerID == nil && !outcome.IsDraw {
		return ErrOutcomeRequired
	}
	if outcome.WinnerID != nil && !match.HasParticipant(*outcome.WinnerID) {
		return ErrWinnerNotParticipant
	}
	return nil
}

type teamShare struct {
	teamID int
	delta  models.ResultDelta
}

// settlementDeltas translates an outcome into each participant's accumulator
// delta under the league's scoring policy. Matches played is incremented by
// ApplyResult itself, so every share keeps wins+draws+losses at exactly one.
func settlementDeltas(league *models.League, match *models.Match, outcome MatchOutcome) [2]teamShare {
	if outcome.IsDraw {
		draw := models.ResultDelta{Points: league.PointsPerDraw, Draws: 1}
		return [2]teamShare{
			{teamID: match.Team1ID, delta: draw},
			{teamID: match.Team2ID, delta: draw},
		}
	}
	winnerID := *outcome.WinnerID
	return [2]teamShare{
		{teamID: winnerID, delta: models.ResultDelta{Points: league.PointsPerWin, Wins: 1}},
		{teamID: match.Opponent(winnerID), delta: models.ResultDelta{Points: league.PointsPerLoss, Losses: 1}},
	}
}
