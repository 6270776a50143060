package models

import "time"

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleCaptain UserRole = "captain"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleCaptain, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              int       `json:"id" db:"id"`
	DiscordID       string    `json:"discord_id" db:"discord_id"`
	DiscordUsername string    `json:"discord_username" db:"discord_username"`
	DiscordAvatar   *string   `json:"discord_avatar,omitempty" db:"discord_avatar"`
	Role            UserRole  `json:"role" db:"role"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Principal is the acting identity every service operation receives
// explicitly. Handlers build it from the verified token claims.
type Principal struct {
	UserID int
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanCaptain reports whether the principal holds captain powers
// (admins always do).
func (p Principal) CanCaptain() bool {
	return p.Role == RoleCaptain || p.Role == RoleAdmin
}
