package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

// Pusher delivers a payload to a user's open websocket connections.
// Delivery is at-most-once: users without an open socket miss the push and
// read the stored notification later.
type Pusher interface {
	PushToUser(userID int, payload interface{}) error
}

type NotificationService interface {
	ResultNotifier
	NotifyInvitation(ctx context.Context, invitation *models.TeamInvitation)
	NotifyCaptainRequestResolved(ctx context.Context, userID int, approved bool)
	ListByUser(ctx context.Context, actor models.Principal) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, actor models.Principal) (int, error)
	MarkRead(ctx context.Context, actor models.Principal, notificationID int) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	teamRepo         repositories.TeamRepository
	hub              Pusher
	logger           *slog.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	teamRepo repositories.TeamRepository,
	hub Pusher,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		teamRepo:         teamRepo,
		hub:              hub,
		logger:           logger,
	}
}

// deliver stores and pushes one notification. Failures are logged and
// dropped: this channel is best-effort and must never fail the operation
// that triggered it.
func (s *notificationService) deliver(ctx context.Context, n *models.Notification) {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("failed to store notification",
			slog.Int("user_id", n.UserID),
			slog.String("type", string(n.Type)),
			slog.Any("error", err),
		)
		return
	}
	if err := s.hub.PushToUser(n.UserID, map[string]interface{}{
		"type": "notification",
		"data": n,
	}); err != nil {
		s.logger.Error("failed to push notification",
			slog.Int("user_id", n.UserID),
			slog.Any("error", err),
		)
	}
}

func (s *notificationService) notifyRosters(ctx context.Context, match *models.Match, kind models.NotificationType, title, message string) {
	data, _ := json.Marshal(map[string]int{"match_id": match.ID})
	for _, teamID := range []int{match.Team1ID, match.Team2ID} {
		members, err := s.teamRepo.ListMembers(ctx, teamID)
		if err != nil {
			s.logger.Error("failed to load roster for notification",
				slog.Int("team_id", teamID),
				slog.Any("error", err),
			)
			continue
		}
		for _, member := range members {
			s.deliver(ctx, &models.Notification{
				UserID:  member.ID,
				Type:    kind,
				Title:   title,
				Message: message,
				Data:    data,
			})
		}
	}
}

func (s *notificationService) MatchScheduled(ctx context.Context, match *models.Match) {
	s.notifyRosters(ctx, match, models.NotificationMatchScheduled,
		"Match scheduled",
		fmt.Sprintf("A new match has been scheduled for %s", match.ScheduledDate.Format("2006-01-02 15:04")),
	)
}

func (s *notificationService) MatchCompleted(ctx context.Context, match *models.Match) {
	message := "Your match ended in a draw"
	if match.WinnerID != nil {
		message = "Your match has been settled"
	}
	s.notifyRosters(ctx, match, models.NotificationMatchResult, "Match result", message)
}

func (s *notificationService) NotifyInvitation(ctx context.Context, invitation *models.TeamInvitation) {
	data, _ := json.Marshal(map[string]int{
		"team_id":       invitation.TeamID,
		"invitation_id": invitation.ID,
	})
	s.deliver(ctx, &models.Notification{
		UserID:  invitation.UserID,
		Type:    models.NotificationTeamInvitation,
		Title:   "Team invitation",
		Message: "You have been invited to join a team",
		Data:    data,
	})
}

func (s *notificationService) NotifyCaptainRequestResolved(ctx context.Context, userID int, approved bool) {
	message := "Your captain request was rejected"
	if approved {
		message = "Your captain request was approved"
	}
	s.deliver(ctx, &models.Notification{
		UserID:  userID,
		Type:    models.NotificationGeneral,
		Title:   "Captain request",
		Message: message,
	})
}

func (s *notificationService) ListByUser(ctx context.Context, actor models.Principal) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, actor.UserID)
}

func (s *notificationService) UnreadCount(ctx context.Context, actor models.Principal) (int, error) {
	return s.notificationRepo.CountUnread(ctx, actor.UserID)
}

func (s *notificationService) MarkRead(ctx context.Context, actor models.Principal, notificationID int) error {
	err := s.notificationRepo.MarkRead(ctx, notificationID, actor.UserID)
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
