package models

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
	MatchPostponed MatchStatus = "postponed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchCompleted, MatchCancelled, MatchPostponed:
		return true
	}
	return false
}

// Terminal statuses admit no further transition.
func (s MatchStatus) Terminal() bool {
	return s == MatchCompleted || s == MatchCancelled
}

// Match is a scheduled contest between two distinct teams, optionally bound
// to a league (standings-relevant) or a tournament. WinnerID and IsDraw are
// mutually exclusive and only meaningful once the match is completed.
type Match struct {
	ID            int         `json:"id" db:"id"`
	TournamentID  *int        `json:"tournament_id,omitempty" db:"tournament_id"`
	LeagueID      *int        `json:"league_id,omitempty" db:"league_id"`
	Team1ID       int         `json:"team1_id" db:"team1_id"`
	Team2ID       int         `json:"team2_id" db:"team2_id"`
	ScheduledDate time.Time   `json:"scheduled_date" db:"scheduled_date"`
	Status        MatchStatus `json:"status" db:"status"`
	WinnerID      *int        `json:"winner_id,omitempty" db:"winner_id"`
	IsDraw        bool        `json:"is_draw" db:"is_draw"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`

	Team1 *Team `json:"team1,omitempty" db:"-"`
	Team2 *Team `json:"team2,omitempty" db:"-"`
}

// CanTransition reports whether the status machine allows moving to the
// given status. Postponed matches may return to scheduled or reach either
// terminal status; completed and cancelled are final.
func (m *Match) CanTransition(to MatchStatus) bool {
	if m.Status.Terminal() || to == m.Status {
		return false
	}
	switch m.Status {
	case MatchScheduled:
		return to == MatchCompleted || to == MatchCancelled || to == MatchPostponed
	case MatchPostponed:
		return to == MatchScheduled || to == MatchCompleted || to == MatchCancelled
	}
	return false
}

func (m *Match) HasParticipant(teamID int) bool {
	return teamID == m.Team1ID || teamID == m.Team2ID
}

// Opponent returns the other participant. The caller must pass one of the
// two participating team IDs.
func (m *Match) Opponent(teamID int) int {
	if teamID == m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}
