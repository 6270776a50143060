package models

import "time"

type TournamentPhase string

const (
	PhaseRegistration TournamentPhase = "registration"
	PhaseActive       TournamentPhase = "active"
	PhaseCompleted    TournamentPhase = "completed"
)

// Tournament is a flat-capacity competition: teams join up to MaxTeams.
// Bracket progression is handled outside this system.
type Tournament struct {
	ID           int             `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	IsPublic     bool            `json:"is_public" db:"is_public"`
	MaxTeams     int             `json:"max_teams" db:"max_teams"`
	CurrentPhase TournamentPhase `json:"current_phase" db:"current_phase"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	EndDate      time.Time       `json:"end_date" db:"end_date"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type TournamentParticipant struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	JoinedAt     time.Time `json:"joined_at" db:"joined_at"`
}
