package models

import "time"

// Platform is the game platform a club plays on.
type Platform string

const (
	PlatformPC       Platform = "PC"
	PlatformSteam    Platform = "Steam"
	PlatformXbox     Platform = "Xbox"
	PlatformGamepass Platform = "Gamepass"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformPC, PlatformSteam, PlatformXbox, PlatformGamepass:
		return true
	}
	return false
}

type Team struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Platform    Platform  `json:"platform" db:"platform"`
	CaptainID   int       `json:"captain_id" db:"captain_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	ImageKey *string `json:"-" db:"image_key"`
	ImageURL *string `json:"image_url,omitempty" db:"-"`

	Captain *User  `json:"captain,omitempty" db:"-"`
	Members []User `json:"members,omitempty" db:"-"`
}

type TeamMember struct {
	ID       int       `json:"id" db:"id"`
	TeamID   int       `json:"team_id" db:"team_id"`
	UserID   int       `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
