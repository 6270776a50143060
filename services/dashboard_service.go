package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

type DashboardService interface {
	Stats(ctx context.Context, actor models.Principal) (*models.DashboardStats, error)
}

type dashboardService struct {
	userRepo    repositories.UserRepository
	teamRepo    repositories.TeamRepository
	leagueRepo  repositories.LeagueRepository
	matchRepo   repositories.MatchRepository
	requestRepo repositories.CaptainRequestRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	leagueRepo repositories.LeagueRepository,
	matchRepo repositories.MatchRepository,
	requestRepo repositories.CaptainRequestRepository,
) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		teamRepo:    teamRepo,
		leagueRepo:  leagueRepo,
		matchRepo:   matchRepo,
		requestRepo: requestRepo,
	}
}

// Stats collects the admin dashboard counters. The counts are independent
// queries, so they run concurrently.
func (s *dashboardService) Stats(ctx context.Context, actor models.Principal) (*models.DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminActionForbidden
	}

	var stats models.DashboardStats
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats.UsersTotal, err = s.userRepo.Count(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TeamsTotal, err = s.teamRepo.Count(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ActiveLeagues, err = s.leagueRepo.CountActive(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.MatchesScheduled, err = s.matchRepo.CountByStatus(gCtx, models.MatchScheduled)
		return err
	})
	g.Go(func() error {
		var err error
		stats.MatchesCompleted, err = s.matchRepo.CountByStatus(gCtx, models.MatchCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		stats.PendingCaptainRequests, err = s.requestRepo.CountPending(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect dashboard stats: %w", err)
	}
	return &stats, nil
}
