package models

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationTeamInvitation NotificationType = "team_invitation"
	NotificationMatchScheduled NotificationType = "match_scheduled"
	NotificationMatchResult    NotificationType = "match_result"
	NotificationGeneral        NotificationType = "general"
)

type Notification struct {
	ID        int              `json:"id" db:"id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Data      json.RawMessage  `json:"data,omitempty" db:"data"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
