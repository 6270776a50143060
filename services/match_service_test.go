package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rematch-liga/league-system/models"
)

var (
	testAdmin  = models.Principal{UserID: 1, Role: models.RoleAdmin}
	testPlayer = models.Principal{UserID: 2, Role: models.RoleUser}
)

func intp(v int) *int { return &v }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMatchFixture() (*memoryStore, MatchService, *captureNotifier) {
	store := newMemoryStore()
	notifier := &captureNotifier{}
	svc := NewMatchService(
		store,
		matchStore{store},
		teamStore{store},
		leagueStore{store},
		participantStore{store},
		notifier,
		testLogger(),
	)
	return store, svc, notifier
}

func mustParticipant(t *testing.T, store *memoryStore, leagueID, teamID int) *models.LeagueParticipant {
	t.Helper()
	p, ok := store.participants[[2]int{leagueID, teamID}]
	if !ok {
		t.Fatalf("no membership row for league %d team %d", leagueID, teamID)
	}
	return p
}

func TestCompleteWinSettlesBothRows(t *testing.T) {
	store, svc, notifier := newMatchFixture()
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	store.seedMembership(league.ID, bravo.ID)
	match := store.seedMatch(&league.ID, alpha.ID, bravo.ID)

	settled, err := svc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{WinnerID: intp(alpha.ID)})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if settled.Status != models.MatchCompleted {
		t.Errorf("status = %q, want completed", settled.Status)
	}
	if settled.WinnerID == nil || *settled.WinnerID != alpha.ID {
		t.Errorf("winner = %v, want %d", settled.WinnerID, alpha.ID)
	}

	winner := mustParticipant(t, store, league.ID, alpha.ID)
	if winner.Points != 3 || winner.Wins != 1 || winner.MatchesPlayed != 1 || winner.Draws != 0 || winner.Losses != 0 {
		t.Errorf("winner row = %+v, want 3 points, 1 win, 1 played", winner)
	}
	loser := mustParticipant(t, store, league.ID, bravo.ID)
	if loser.Points != 0 || loser.Losses != 1 || loser.MatchesPlayed != 1 || loser.Wins != 0 || loser.Draws != 0 {
		t.Errorf("loser row = %+v, want 0 points, 1 loss, 1 played", loser)
	}

	if len(notifier.completed) != 1 || notifier.completed[0] != match.ID {
		t.Errorf("completed notifications = %v, want [%d]", notifier.completed, match.ID)
	}
}

func TestCompleteDrawCreditsBothTeams(t *testing.T) {
	store, svc, _ := newMatchFixture()
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	store.seedMembership(league.ID, bravo.ID)
	match := store.seedMatch(&league.ID, alpha.ID, bravo.ID)

	if _, err := svc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{IsDraw: true}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	for _, teamID := range []int{alpha.ID, bravo.ID} {
		row := mustParticipant(t, store, league.ID, teamID)
		if row.Points != 1 || row.Draws != 1 || row.MatchesPlayed != 1 || row.Wins != 0 || row.Losses != 0 {
			t.Errorf("team %d row = %+v, want 1 point, 1 draw, 1 played", teamID, row)
		}
	}
}

func TestCompleteConservesPointTotals(t *testing.T) {
	store, svc, _ := newMatchFixture()
	league := store.seedLeague(3, 1, 1)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	store.seedMembership(league.ID, bravo.ID)

	win := store.seedMatch(&league.ID, alpha.ID, bravo.ID)
	if _, err := svc.Complete(context.Background(), testAdmin, win.ID, MatchOutcome{WinnerID: intp(bravo.ID)}); err != nil {
		t.Fatalf("Complete win: %v", err)
	}
	draw := store.seedMatch(&league.ID, alpha.ID, bravo.ID)
	if _, err := svc.Complete(context.Background(), testAdmin, draw.ID, MatchOutcome{IsDraw: true}); err != nil {
		t.Fatalf("Complete draw: %v", err)
	}

	total := 0
	played := 0
	for _, teamID := range []int{alpha.ID, bravo.ID} {
		row := mustParticipant(t, store, league.ID, teamID)
		total += row.Points
		played += row.MatchesPlayed
		if row.MatchesPlayed != row.Wins+row.Draws+row.Losses {
			t.Errorf("team %d: played %d != wins+draws+losses %d", teamID, row.MatchesPlayed, row.Wins+row.Draws+row.Losses)
		}
	}
	// One decided match hands out win+loss points, one draw hands out twice
	// the draw value.
	if want := (3 + 1) + (1 + 1); total != want {
		t.Errorf("total points = %d, want %d", total, want)
	}
	if played != 4 {
		t.Errorf("total matches played = %d, want 4", played)
	}
}

func TestCompleteSecondAttemptIsRejected(t *testing.T) {
	store, svc, _ := newMatchFixture()
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	store.seedMembership(league.ID, bravo.ID)
	match := store.seedMatch(&league.ID, alpha.ID, bravo.ID)

	if _, err := svc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{WinnerID: intp(alpha.ID)}); err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	if _, err := svc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{WinnerID: intp(bravo.ID)}); !errors.Is(err, ErrMatchAlreadySettled) {
		t.Fatalf("second Complete err = %v, want ErrMatchAlreadySettled", err)
	}

	winner := mustParticipant(t, store, league.ID, alpha.ID)
	loser := mustParticipant(t, store, league.ID, bravo.ID)
	if winner.Points != 3 || loser.Points != 0 || winner.MatchesPlayed != 1 || loser.MatchesPlayed != 1 {
		t.Errorf("standings changed by rejected settlement: winner %+v, loser %+v", winner, loser)
	}
}

func TestCompleteRollsBackOnPartialFailure(t *testing.T) {
	store, svc, notifier := newMatchFixture()
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	store.seedMembership(league.ID, bravo.ID)
	match := store.seedMatch(&league.ID, alpha.ID, bravo.ID)

	// First increment lands, second fails: everything must unwind.
	store.failOnApply = 2
	if _, err := svc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{WinnerID: intp(alpha.ID)}); !errors.Is(err, errInjected) {
		t.Fatalf("Complete err = %v, want injected failure", err)
	}

	if got := store.matches[match.ID].Status; got != models.MatchScheduled {
		t.Errorf("match status after rollback = %q, want scheduled", got)
	}
	for _, teamID := range []int{alpha.ID, bravo.ID} {
		row := mustParticipant(t, store, league.ID, teamID)
		if row.Points != 0 || row.MatchesPlayed != 0 {
			t.Errorf("team %d row mutated despite rollback: %+v", teamID, row)
		}
	}
	if len(notifier.completed) != 0 {
		t.Errorf("completion notified despite rollback: %v", notifier.completed)
	}

	// The match is still settleable once the storage recovers.
	store.failOnApply = 0
	if _, err := svc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{WinnerID: intp(alpha.ID)}); err != nil {
		t.Fatalf("Complete after recovery: %v", err)
	}
	if got := mustParticipant(t, store, league.ID, alpha.ID).Points; got != 3 {
		t.Errorf("winner points after recovery = %d, want 3", got)
	}
}

func TestCompleteOutcomeValidation(t *testing.T) {
	store, svc, _ := newMatchFixture()
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	store.seedMembership(league.ID, bravo.ID)
	match := store.seedMatch(&league.ID, alpha.ID, bravo.ID)

	tests := []struct {
		name    string
		outcome MatchOutcome
		want    error
	}{
		{"winner and draw", MatchOutcome{WinnerID: intp(alpha.ID), IsDraw: true}, ErrOutcomeConflict},
		{"neither winner nor draw", MatchOutcome{}, ErrOutcomeRequired},
		{"winner not playing", MatchOutcome{WinnerID: intp(999)}, ErrWinnerNotParticipant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Complete(context.Background(), testAdmin, match.ID, tt.outcome); !errors.Is(err, tt.want) {
				t.Errorf("Complete err = %v, want %v", err, tt.want)
			}
		})
	}

	if got := store.matches[match.ID].Status; got != models.MatchScheduled {
		t.Errorf("match status after rejected outcomes = %q, want scheduled", got)
	}
}

func TestCompleteRequiresAdmin(t *testing.T) {
	store, svc, _ := newMatchFixture()
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	match := store.seedMatch(&league.ID, alpha.ID, bravo.ID)

	if _, err := svc.Complete(context.Background(), testPlayer, match.ID, MatchOutcome{WinnerID: intp(alpha.ID)}); !errors.Is(err, ErrAdminActionForbidden) {
		t.Fatalf("Complete err = %v, want ErrAdminActionForbidden", err)
	}
}

func TestCompleteWithoutMembershipRollsBack(t *testing.T) {
	store, svc, _ := newMatchFixture()
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	// Bravo never joined the league.
	match := store.seedMatch(&league.ID, alpha.ID, bravo.ID)

	if _, err := svc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{WinnerID: intp(alpha.ID)}); !errors.Is(err, ErrTeamNotInLeague) {
		t.Fatalf("Complete err = %v, want ErrTeamNotInLeague", err)
	}
	if got := store.matches[match.ID].Status; got != models.MatchScheduled {
		t.Errorf("match status = %q, want scheduled after rollback", got)
	}
	if got := mustParticipant(t, store, league.ID, alpha.ID).Points; got != 0 {
		t.Errorf("winner credited despite rollback: %d points", got)
	}
}

func TestCompleteNonLeagueMatchSkipsStandings(t *testing.T) {
	store, svc, _ := newMatchFixture()
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	store.seedMembership(league.ID, bravo.ID)
	match := store.seedMatch(nil, alpha.ID, bravo.ID)

	settled, err := svc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{WinnerID: intp(bravo.ID)})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if settled.Status != models.MatchCompleted {
		t.Errorf("status = %q, want completed", settled.Status)
	}
	for _, teamID := range []int{alpha.ID, bravo.ID} {
		if got := mustParticipant(t, store, league.ID, teamID).Points; got != 0 {
			t.Errorf("team %d gained %d points from a non-league match", teamID, got)
		}
	}
}

func TestChangeStatusTransitions(t *testing.T) {
	store, svc, _ := newMatchFixture()
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	match := store.seedMatch(nil, alpha.ID, bravo.ID)

	postponed, err := svc.ChangeStatus(context.Background(), testAdmin, match.ID, models.MatchPostponed)
	if err != nil {
		t.Fatalf("postpone: %v", err)
	}
	if postponed.Status != models.MatchPostponed {
		t.Errorf("status = %q, want postponed", postponed.Status)
	}

	rescheduled, err := svc.ChangeStatus(context.Background(), testAdmin, match.ID, models.MatchScheduled)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if rescheduled.Status != models.MatchScheduled {
		t.Errorf("status = %q, want scheduled", rescheduled.Status)
	}

	// Completion always goes through the settlement path.
	if _, err := svc.ChangeStatus(context.Background(), testAdmin, match.ID, models.MatchCompleted); !errors.Is(err, ErrOutcomeRequired) {
		t.Fatalf("complete via status err = %v, want ErrOutcomeRequired", err)
	}

	if _, err := svc.ChangeStatus(context.Background(), testAdmin, match.ID, models.MatchCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.ChangeStatus(context.Background(), testAdmin, match.ID, models.MatchScheduled); !errors.Is(err, ErrInvalidMatchTransition) {
		t.Fatalf("revive cancelled err = %v, want ErrInvalidMatchTransition", err)
	}
}

func TestSettlementDeltas(t *testing.T) {
	league := &models.League{PointsPerWin: 3, PointsPerDraw: 1, PointsPerLoss: 0}
	match := &models.Match{Team1ID: 10, Team2ID: 20}

	win := settlementDeltas(league, match, MatchOutcome{WinnerID: intp(20)})
	if win[0].teamID != 20 || win[0].delta != (models.ResultDelta{Points: 3, Wins: 1}) {
		t.Errorf("winner share = %+v, want team 20 with 3 points and 1 win", win[0])
	}
	if win[1].teamID != 10 || win[1].delta != (models.ResultDelta{Points: 0, Losses: 1}) {
		t.Errorf("loser share = %+v, want team 10 with 0 points and 1 loss", win[1])
	}

	draw := settlementDeltas(league, match, MatchOutcome{IsDraw: true})
	want := models.ResultDelta{Points: 1, Draws: 1}
	if draw[0].teamID != 10 || draw[0].delta != want || draw[1].teamID != 20 || draw[1].delta != want {
		t.Errorf("draw shares = %+v, want both teams with 1 point and 1 draw", draw)
	}
}

func TestScheduleValidation(t *testing.T) {
	store, svc, notifier := newMatchFixture()
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	inactive := store.seedTeam("Ghosts")
	store.teams[inactive.ID].IsActive = false

	date := time.Now().Add(48 * time.Hour)

	if _, err := svc.Schedule(context.Background(), testAdmin, ScheduleMatchInput{Team1ID: alpha.ID, Team2ID: alpha.ID, ScheduledDate: date}); !errors.Is(err, ErrTeamsNotDistinct) {
		t.Errorf("same team twice err = %v, want ErrTeamsNotDistinct", err)
	}
	if _, err := svc.Schedule(context.Background(), testAdmin, ScheduleMatchInput{Team1ID: alpha.ID, Team2ID: inactive.ID, ScheduledDate: date}); !errors.Is(err, ErrTeamInactive) {
		t.Errorf("inactive team err = %v, want ErrTeamInactive", err)
	}
	if _, err := svc.Schedule(context.Background(), testPlayer, ScheduleMatchInput{Team1ID: alpha.ID, Team2ID: bravo.ID, ScheduledDate: date}); !errors.Is(err, ErrAdminActionForbidden) {
		t.Errorf("non-admin err = %v, want ErrAdminActionForbidden", err)
	}

	match, err := svc.Schedule(context.Background(), testAdmin, ScheduleMatchInput{Team1ID: alpha.ID, Team2ID: bravo.ID, ScheduledDate: date})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if match.Status != models.MatchScheduled {
		t.Errorf("status = %q, want scheduled", match.Status)
	}
	if len(notifier.scheduled) != 1 || notifier.scheduled[0] != match.ID {
		t.Errorf("schedule notifications = %v, want [%d]", notifier.scheduled, match.ID)
	}
}
