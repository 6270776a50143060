package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in one place by the
// handlers package.
var (
	// Not found
	ErrNotFound               = errors.New("requested resource not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrTeamNotFound           = errors.New("team not found")
	ErrLeagueNotFound         = errors.New("league not found")
	ErrMatchNotFound          = errors.New("match not found")
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrInvitationNotFound     = errors.New("invitation not found")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrCaptainRequestNotFound = errors.New("captain request not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrTeamNameRequired     = errors.New("team name is required")
	ErrInvalidPlatform      = errors.New("invalid platform")
	ErrInvalidRole          = errors.New("invalid role")
	ErrTeamInactive         = errors.New("team is not active")
	ErrTeamsNotDistinct     = errors.New("a match requires two distinct teams")
	ErrOutcomeRequired      = errors.New("completing a match requires a winner or a draw")
	ErrOutcomeConflict      = errors.New("winner and draw are mutually exclusive")
	ErrWinnerNotParticipant = errors.New("winner is not one of the match participants")
	ErrTeamNotInLeague      = errors.New("team is not a member of the match league")
	ErrLeagueInvalidPolicy  = errors.New("league point values must be non-negative")
	ErrLeagueInactive       = errors.New("league is not active")
	ErrInvalidDateRange     = errors.New("end date must be after start date")
	ErrInvalidCapacity      = errors.New("tournament must allow at least two teams")
	ErrInvitationNotPending = errors.New("invitation has already been resolved")
	ErrRequestNotPending    = errors.New("captain request has already been resolved")

	// Conflicts
	ErrTeamNameConflict      = errors.New("team name is already in use")
	ErrLeagueNameConflict    = errors.New("league name is already in use")
	ErrMatchAlreadySettled   = errors.New("match is already in a terminal status")
	ErrInvalidMatchTransition = errors.New("invalid match status transition")
	ErrTournamentFull        = errors.New("tournament registration is full")

	// Authentication and authorization
	ErrInvalidCredentials     = errors.New("invalid admin credentials")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")
	ErrAdminActionForbidden   = errors.New("administrator role required")
)
