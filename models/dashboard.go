package models

type DashboardStats struct {
	UsersTotal             int `json:"users_total"`
	TeamsTotal             int `json:"teams_total"`
	ActiveLeagues          int `json:"active_leagues"`
	MatchesScheduled       int `json:"matches_scheduled"`
	MatchesCompleted       int `json:"matches_completed"`
	PendingCaptainRequests int `json:"pending_captain_requests"`
}
