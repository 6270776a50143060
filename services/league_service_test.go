package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rematch-liga/league-system/models"
)

func newLeagueFixture() (*memoryStore, LeagueService) {
	store := newMemoryStore()
	svc := NewLeagueService(leagueStore{store}, participantStore{store}, teamStore{store})
	return store, svc
}

func TestLeagueCreate(t *testing.T) {
	_, svc := newLeagueFixture()

	if _, err := svc.Create(context.Background(), testPlayer, CreateLeagueInput{Name: "Spring Split", PointsPerWin: 3}); !errors.Is(err, ErrAdminActionForbidden) {
		t.Errorf("non-admin err = %v, want ErrAdminActionForbidden", err)
	}
	if _, err := svc.Create(context.Background(), testAdmin, CreateLeagueInput{PointsPerWin: 3}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("empty name err = %v, want ErrValidationFailed", err)
	}
	if _, err := svc.Create(context.Background(), testAdmin, CreateLeagueInput{Name: "Spring Split", PointsPerWin: -3}); !errors.Is(err, ErrLeagueInvalidPolicy) {
		t.Errorf("negative policy err = %v, want ErrLeagueInvalidPolicy", err)
	}

	league, err := svc.Create(context.Background(), testAdmin, CreateLeagueInput{Name: "Spring Split", PointsPerWin: 3, PointsPerDraw: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if league.ID == 0 || !league.IsActive {
		t.Errorf("created league = %+v, want assigned ID and active", league)
	}

	if _, err := svc.Create(context.Background(), testAdmin, CreateLeagueInput{Name: "Spring Split", PointsPerWin: 3}); !errors.Is(err, ErrLeagueNameConflict) {
		t.Errorf("duplicate name err = %v, want ErrLeagueNameConflict", err)
	}
}

func TestLeagueJoin(t *testing.T) {
	store, svc := newLeagueFixture()
	league := store.seedLeague(3, 1, 0)
	team := store.seedTeam("Alpha")
	captain := models.Principal{UserID: team.CaptainID, Role: models.RoleCaptain}

	if err := svc.Join(context.Background(), captain, league.ID, team.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	row, ok := store.participants[[2]int{league.ID, team.ID}]
	if !ok {
		t.Fatal("no membership row created")
	}
	if row.Points != 0 || row.MatchesPlayed != 0 || row.Wins != 0 || row.Draws != 0 || row.Losses != 0 {
		t.Errorf("new membership row not zeroed: %+v", row)
	}

	// Joining again is a no-op, not an error.
	row.Points = 7
	if err := svc.Join(context.Background(), captain, league.ID, team.ID); err != nil {
		t.Fatalf("second Join: %v", err)
	}
	if got := store.participants[[2]int{league.ID, team.ID}]; got.Points != 7 {
		t.Errorf("second join reset the row: %+v", got)
	}
	count := 0
	for key := range store.participants {
		if key[0] == league.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("membership rows for league = %d, want 1", count)
	}
}

func TestLeagueJoinAuthorization(t *testing.T) {
	store, svc := newLeagueFixture()
	league := store.seedLeague(3, 1, 0)
	team := store.seedTeam("Alpha")

	stranger := models.Principal{UserID: team.CaptainID + 100, Role: models.RoleCaptain}
	if err := svc.Join(context.Background(), stranger, league.ID, team.ID); !errors.Is(err, ErrCaptainActionForbidden) {
		t.Errorf("stranger err = %v, want ErrCaptainActionForbidden", err)
	}

	// Admins may enroll any team.
	if err := svc.Join(context.Background(), testAdmin, league.ID, team.ID); err != nil {
		t.Errorf("admin Join: %v", err)
	}
}

func TestLeagueJoinRejectsInactive(t *testing.T) {
	store, svc := newLeagueFixture()
	league := store.seedLeague(3, 1, 0)
	team := store.seedTeam("Alpha")
	captain := models.Principal{UserID: team.CaptainID, Role: models.RoleCaptain}

	store.teams[team.ID].IsActive = false
	if err := svc.Join(context.Background(), captain, league.ID, team.ID); !errors.Is(err, ErrTeamInactive) {
		t.Errorf("inactive team err = %v, want ErrTeamInactive", err)
	}
	store.teams[team.ID].IsActive = true

	store.leagues[league.ID].IsActive = false
	if err := svc.Join(context.Background(), captain, league.ID, team.ID); !errors.Is(err, ErrLeagueInactive) {
		t.Errorf("inactive league err = %v, want ErrLeagueInactive", err)
	}

	if err := svc.Join(context.Background(), captain, league.ID+100, team.ID); !errors.Is(err, ErrLeagueNotFound) {
		t.Errorf("unknown league err = %v, want ErrLeagueNotFound", err)
	}
}

func TestGetStandingsOrderingAndPositions(t *testing.T) {
	store, svc := newLeagueFixture()
	league := store.seedLeague(3, 1, 0)

	// Bravo and Delta tie on points, Bravo has more wins. Alpha and Charlie
	// tie on points and wins, so the name decides.
	rows := []struct {
		name   string
		points int
		wins   int
		draws  int
		losses int
	}{
		{"Charlie", 3, 1, 0, 2},
		{"Alpha", 3, 1, 0, 2},
		{"Delta", 7, 2, 1, 0},
		{"Bravo", 7, 3, 0, 1},
	}
	for _, r := range rows {
		team := store.seedTeam(r.name)
		p := store.seedMembership(league.ID, team.ID)
		p.Points = r.points
		p.Wins = r.wins
		p.Draws = r.draws
		p.Losses = r.losses
		p.MatchesPlayed = r.wins + r.draws + r.losses
	}

	standings, err := svc.GetStandings(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("GetStandings: %v", err)
	}

	wantOrder := []string{"Bravo", "Delta", "Alpha", "Charlie"}
	if len(standings) != len(wantOrder) {
		t.Fatalf("standings length = %d, want %d", len(standings), len(wantOrder))
	}
	for i, want := range wantOrder {
		if standings[i].Team.Name != want {
			t.Errorf("standings[%d] = %q, want %q", i, standings[i].Team.Name, want)
		}
		if standings[i].Position != i+1 {
			t.Errorf("standings[%d].Position = %d, want %d", i, standings[i].Position, i+1)
		}
	}
}

func TestGetStandingsAfterSettlement(t *testing.T) {
	store, svc := newLeagueFixture()
	matchSvc := NewMatchService(
		store,
		matchStore{store},
		teamStore{store},
		leagueStore{store},
		participantStore{store},
		&captureNotifier{},
		testLogger(),
	)
	league := store.seedLeague(3, 1, 0)
	alpha := store.seedTeam("Alpha")
	bravo := store.seedTeam("Bravo")
	store.seedMembership(league.ID, alpha.ID)
	store.seedMembership(league.ID, bravo.ID)
	match := store.seedMatch(&league.ID, alpha.ID, bravo.ID)

	if _, err := matchSvc.Complete(context.Background(), testAdmin, match.ID, MatchOutcome{WinnerID: intp(alpha.ID)}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	first, err := svc.GetStandings(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("GetStandings: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("standings length = %d, want 2", len(first))
	}
	if first[0].Team.ID != alpha.ID || first[0].Position != 1 || first[0].Points != 3 {
		t.Errorf("standings[0] = %+v, want Alpha first with 3 points", first[0])
	}
	if first[1].Team.ID != bravo.ID || first[1].Position != 2 || first[1].Points != 0 {
		t.Errorf("standings[1] = %+v, want Bravo second with 0 points", first[1])
	}

	// With no settlement in between, a second read is identical.
	second, err := svc.GetStandings(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("second GetStandings: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated reads differ:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestGetStandingsEmptyLeague(t *testing.T) {
	store, svc := newLeagueFixture()
	league := store.seedLeague(3, 1, 0)

	standings, err := svc.GetStandings(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("GetStandings: %v", err)
	}
	if len(standings) != 0 {
		t.Errorf("standings = %v, want empty", standings)
	}

	if _, err := svc.GetStandings(context.Background(), league.ID+100); !errors.Is(err, ErrLeagueNotFound) {
		t.Errorf("unknown league err = %v, want ErrLeagueNotFound", err)
	}
}
