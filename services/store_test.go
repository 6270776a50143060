package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

var errInjected = errors.New("injected storage failure")

// memoryStore backs the service tests with an in-memory rendition of the
// repository contracts, including the transactional snapshot/rollback
// behavior the settlement path depends on. Only what the services under
// test touch is implemented; the rest panics loudly.
type memoryStore struct {
	matches      map[int]*models.Match
	leagues      map[int]*models.League
	participants map[[2]int]*models.LeagueParticipant
	teams        map[int]*models.Team
	members      map[int][]models.User
	nextID       int

	// failOnApply makes the n-th ApplyResult call fail, to exercise
	// rollback. Zero disables injection.
	failOnApply int
	applyCalls  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		matches:      make(map[int]*models.Match),
		leagues:      make(map[int]*models.League),
		participants: make(map[[2]int]*models.LeagueParticipant),
		teams:        make(map[int]*models.Team),
		members:      make(map[int][]models.User),
	}
}

func (s *memoryStore) id() int {
	s.nextID++
	return s.nextID
}

// seed helpers

func (s *memoryStore) seedTeam(name string) *models.Team {
	team := &models.Team{
		ID:        s.id(),
		Name:      name,
		Platform:  models.PlatformPC,
		CaptainID: 1,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.teams[team.ID] = team
	return team
}

func (s *memoryStore) seedLeague(win, draw, loss int) *models.League {
	league := &models.League{
		ID:            s.id(),
		Name:          "Season",
		PointsPerWin:  win,
		PointsPerDraw: draw,
		PointsPerLoss: loss,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	s.leagues[league.ID] = league
	return league
}

func (s *memoryStore) seedMembership(leagueID, teamID int) *models.LeagueParticipant {
	p := &models.LeagueParticipant{
		ID:       s.id(),
		LeagueID: leagueID,
		TeamID:   teamID,
		JoinedAt: time.Now(),
	}
	s.participants[[2]int{leagueID, teamID}] = p
	return p
}

func (s *memoryStore) seedMatch(leagueID *int, team1, team2 int) *models.Match {
	match := &models.Match{
		ID:            s.id(),
		LeagueID:      leagueID,
		Team1ID:       team1,
		Team2ID:       team2,
		ScheduledDate: time.Now().Add(24 * time.Hour),
		Status:        models.MatchScheduled,
		CreatedAt:     time.Now(),
	}
	s.matches[match.ID] = match
	return match
}

// TxManager

func (s *memoryStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	matchesSnapshot := make(map[int]*models.Match, len(s.matches))
	for id, m := range s.matches {
		copied := *m
		matchesSnapshot[id] = &copied
	}
	participantsSnapshot := make(map[[2]int]*models.LeagueParticipant, len(s.participants))
	for key, p := range s.participants {
		copied := *p
		participantsSnapshot[key] = &copied
	}

	if err := fn(nil); err != nil {
		s.matches = matchesSnapshot
		s.participants = participantsSnapshot
		return err
	}
	return nil
}

// MatchRepository

func (s *memoryStore) Create(ctx context.Context, match *models.Match) error {
	match.ID = s.id()
	match.CreatedAt = time.Now()
	copied := *match
	s.matches[match.ID] = &copied
	return nil
}

func (s *memoryStore) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, ok := s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (s *memoryStore) MarkCompleted(ctx context.Context, exec repositories.SQLExecutor, id int, winnerID *int, isDraw bool) error {
	match, ok := s.matches[id]
	if !ok || (match.Status != models.MatchScheduled && match.Status != models.MatchPostponed) {
		return repositories.ErrMatchNotUpdatable
	}
	match.Status = models.MatchCompleted
	match.WinnerID = winnerID
	match.IsDraw = isDraw
	return nil
}

func (s *memoryStore) UpdateStatus(ctx context.Context, id int, from, to models.MatchStatus) error {
	match, ok := s.matches[id]
	if !ok || match.Status != from {
		return repositories.ErrMatchNotUpdatable
	}
	match.Status = to
	return nil
}

func (s *memoryStore) ListByTeam(ctx context.Context, teamID int) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, m := range s.matches {
		if m.Team1ID == teamID || m.Team2ID == teamID {
			copied := *m
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ScheduledDate.After(matches[j].ScheduledDate)
	})
	return matches, nil
}

func (s *memoryStore) ListUpcoming(ctx context.Context, limit int) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, m := range s.matches {
		if m.Status == models.MatchScheduled {
			copied := *m
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ScheduledDate.Before(matches[j].ScheduledDate)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *memoryStore) ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, m := range s.matches {
		if !m.ScheduledDate.Before(from) && !m.ScheduledDate.After(to) {
			copied := *m
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ScheduledDate.Before(matches[j].ScheduledDate)
	})
	return matches, nil
}

func (s *memoryStore) CountByStatus(ctx context.Context, status models.MatchStatus) (int, error) {
	count := 0
	for _, m := range s.matches {
		if m.Status == status {
			count++
		}
	}
	return count, nil
}

// matchStore narrows memoryStore to the MatchRepository method set so the
// Create name does not clash with the other repository fakes.
type matchStore struct{ *memoryStore }

var _ repositories.MatchRepository = matchStore{}

// leagueStore implements repositories.LeagueRepository.
type leagueStore struct{ store *memoryStore }

var _ repositories.LeagueRepository = leagueStore{}

func (s leagueStore) Create(ctx context.Context, league *models.League) error {
	for _, existing := range s.store.leagues {
		if existing.Name == league.Name {
			return repositories.ErrLeagueNameConflict
		}
	}
	league.ID = s.store.id()
	league.CreatedAt = time.Now()
	copied := *league
	s.store.leagues[league.ID] = &copied
	return nil
}

func (s leagueStore) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.League, error) {
	league, ok := s.store.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	copied := *league
	return &copied, nil
}

func (s leagueStore) ListActive(ctx context.Context) ([]*models.League, error) {
	leagues := make([]*models.League, 0)
	for _, l := range s.store.leagues {
		if l.IsActive {
			copied := *l
			leagues = append(leagues, &copied)
		}
	}
	sort.Slice(leagues, func(i, j int) bool { return leagues[i].ID < leagues[j].ID })
	return leagues, nil
}

func (s leagueStore) CountActive(ctx context.Context) (int, error) {
	leagues, _ := s.ListActive(ctx)
	return len(leagues), nil
}

// participantStore implements repositories.LeagueParticipantRepository.
type participantStore struct{ store *memoryStore }

var _ repositories.LeagueParticipantRepository = participantStore{}

func (s participantStore) Add(ctx context.Context, leagueID, teamID int) error {
	key := [2]int{leagueID, teamID}
	if _, exists := s.store.participants[key]; exists {
		return nil
	}
	s.store.participants[key] = &models.LeagueParticipant{
		ID:       s.store.id(),
		LeagueID: leagueID,
		TeamID:   teamID,
		JoinedAt: time.Now(),
	}
	return nil
}

func (s participantStore) Get(ctx context.Context, leagueID, teamID int) (*models.LeagueParticipant, error) {
	p, ok := s.store.participants[[2]int{leagueID, teamID}]
	if !ok {
		return nil, repositories.ErrLeagueMembershipNotFound
	}
	copied := *p
	return &copied, nil
}

func (s participantStore) ApplyResult(ctx context.Context, exec repositories.SQLExecutor, leagueID, teamID int, delta models.ResultDelta) error {
	s.store.applyCalls++
	if s.store.failOnApply > 0 && s.store.applyCalls == s.store.failOnApply {
		return errInjected
	}
	p, ok := s.store.participants[[2]int{leagueID, teamID}]
	if !ok {
		return repositories.ErrLeagueMembershipNotFound
	}
	p.Points += delta.Points
	p.MatchesPlayed++
	p.Wins += delta.Wins
	p.Draws += delta.Draws
	p.Losses += delta.Losses
	return nil
}

func (s participantStore) ListStandings(ctx context.Context, leagueID int) ([]*models.LeagueStanding, error) {
	standings := make([]*models.LeagueStanding, 0)
	for _, p := range s.store.participants {
		if p.LeagueID != leagueID {
			continue
		}
		team, ok := s.store.teams[p.TeamID]
		if !ok {
			continue
		}
		standings = append(standings, &models.LeagueStanding{
			Team:          *team,
			Points:        p.Points,
			MatchesPlayed: p.MatchesPlayed,
			Wins:          p.Wins,
			Draws:         p.Draws,
			Losses:        p.Losses,
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Team.Name < b.Team.Name
	})
	return standings, nil
}

// teamStore implements repositories.TeamRepository.
type teamStore struct{ store *memoryStore }

var _ repositories.TeamRepository = teamStore{}

func (s teamStore) Create(ctx context.Context, team *models.Team) error {
	for _, existing := range s.store.teams {
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = s.store.id()
	team.CreatedAt = time.Now()
	copied := *team
	s.store.teams[team.ID] = &copied
	return nil
}

func (s teamStore) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, ok := s.store.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (s teamStore) ListActive(ctx context.Context) ([]*models.Team, error) {
	teams := make([]*models.Team, 0)
	for _, t := range s.store.teams {
		if t.IsActive {
			copied := *t
			teams = append(teams, &copied)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (s teamStore) ListByUser(ctx context.Context, userID int) ([]*models.Team, error) {
	teams := make([]*models.Team, 0)
	for teamID, users := range s.store.members {
		for _, u := range users {
			if u.ID == userID {
				if team, ok := s.store.teams[teamID]; ok {
					copied := *team
					teams = append(teams, &copied)
				}
			}
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (s teamStore) UpdateImageKey(ctx context.Context, id int, imageKey *string) error {
	team, ok := s.store.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.ImageKey = imageKey
	return nil
}

func (s teamStore) SetActive(ctx context.Context, id int, active bool) error {
	team, ok := s.store.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.IsActive = active
	return nil
}

func (s teamStore) AddMember(ctx context.Context, teamID, userID int) error {
	for _, u := range s.store.members[teamID] {
		if u.ID == userID {
			return nil
		}
	}
	s.store.members[teamID] = append(s.store.members[teamID], models.User{ID: userID})
	return nil
}

func (s teamStore) RemoveMember(ctx context.Context, teamID, userID int) error {
	users := s.store.members[teamID]
	for i, u := range users {
		if u.ID == userID {
			s.store.members[teamID] = append(users[:i], users[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTeamMemberNotFound
}

func (s teamStore) ListMembers(ctx context.Context, teamID int) ([]models.User, error) {
	return append([]models.User(nil), s.store.members[teamID]...), nil
}

func (s teamStore) Count(ctx context.Context) (int, error) {
	return len(s.store.teams), nil
}

// captureNotifier records the match events it receives.
type captureNotifier struct {
	scheduled []int
	completed []int
}

func (n *captureNotifier) MatchScheduled(ctx context.Context, match *models.Match) {
	n.scheduled = append(n.scheduled, match.ID)
}

func (n *captureNotifier) MatchCompleted(ctx context.Context, match *models.Match) {
	n.completed = append(n.completed, match.ID)
}
