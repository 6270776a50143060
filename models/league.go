package models

import "time"

// League owns the scoring policy applied when a bound match is settled.
// The point values are fixed at creation; settlements never recompute
// earlier results.
type League struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	PointsPerWin  int       `json:"points_per_win" db:"points_per_win"`
	PointsPerDraw int       `json:"points_per_draw" db:"points_per_draw"`
	PointsPerLoss int       `json:"points_per_loss" db:"points_per_loss"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// LeagueParticipant is the per (league, team) accumulator row.
// Invariant: MatchesPlayed == Wins + Draws + Losses after every settlement.
type LeagueParticipant struct {
	ID            int       `json:"id" db:"id"`
	LeagueID      int       `json:"league_id" db:"league_id"`
	TeamID        int       `json:"team_id" db:"team_id"`
	Points        int       `json:"points" db:"points"`
	MatchesPlayed int       `json:"matches_played" db:"matches_played"`
	Wins          int       `json:"wins" db:"wins"`
	Draws         int       `json:"draws" db:"draws"`
	Losses        int       `json:"losses" db:"losses"`
	JoinedAt      time.Time `json:"joined_at" db:"joined_at"`
}

// ResultDelta is one team's share of a settled match. MatchesPlayed is
// always incremented by one alongside it.
type ResultDelta struct {
	Points int
	Wins   int
	Draws  int
	Losses int
}

// LeagueStanding is a row of the ranked standings view. Position is a
// distinct sequential 1-based rank.
type LeagueStanding struct {
	Position      int  `json:"position"`
	Team          Team `json:"team"`
	Points        int  `json:"points"`
	MatchesPlayed int  `json:"matches_played"`
	Wins          int  `json:"wins"`
	Draws         int  `json:"draws"`
	Losses        int  `json:"losses"`
}
