package services

import (
	"context"
	"log"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/realtime"
	"github.com/pulsegram/backend/internal/repositories"
)

// Notifier is the notification writer: it persists the record, then
// hands off to the relay bridge and channel dispatcher. Persistence is
// channel-agnostic; everything after the insert is best-effort, since
// the persisted row is authoritative and the next full fetch covers any
// missed real-time nudge.
type Notifier struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	bridge        realtime.Publisher
	dispatcher    *Dispatcher
}

// NewNotifier wires the notification writer. bridge and dispatcher may
// be nil in contexts (tests, batch jobs) that only need persistence.
func NewNotifier(notifs repositories.NotificationRepository, users repositories.UserRepository, bridge realtime.Publisher, dispatcher *Dispatcher) *Notifier {
	return &Notifier{
		notifications: notifs,
		users:         users,
		bridge:        bridge,
		dispatcher:    dispatcher,
	}
}

// Notify creates a notification for the triggering domain event.
// An explicit content string wins; otherwise Content stays nil and the
// client resolves display text from the type template. Priority defaults
// to NORMAL.
func (s *Notifier) Notify(ctx context.Context, req *models.CreateNotificationRequest) (*models.Notification, error) {
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	notification := &models.Notification{
		Type:         req.Type,
		RecipientID:  req.RecipientID,
		SenderID:     req.SenderID,
		Content:      req.Content,
		Priority:     priority,
		IsActionable: req.IsActionable,
		ActionLabel:  req.ActionLabel,
		ActionURL:    req.ActionURL,
		ImageURL:     req.ImageURL,
		URL:          req.URL,
		GroupID:      req.GroupID,
		PageID:       req.PageID,
	}

	if err := s.notifications.CreateNotification(notification); err != nil {
		return nil, err
	}

	// Persist-first, publish-second. A failed publish only costs the
	// real-time nudge.
	if s.bridge != nil {
		if err := s.bridge.Publish(ctx, notification.RecipientID, realtime.NewNotification{Notification: *notification}); err != nil {
			log.Printf("notifier: relay publish failed for notification %d: %v", notification.ID, err)
		}
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, notification, s.displayText(notification))
	}

	return notification, nil
}

// displayText resolves what push and email channels should show.
func (s *Notifier) displayText(n *models.Notification) string {
	if n.Content != nil && *n.Content != "" {
		return *n.Content
	}

	senderName := ""
	if n.SenderID != nil {
		if sender, err := s.users.GetUserByID(*n.SenderID); err == nil {
			senderName = sender.ToCompact().DisplayName
		}
	}
	return RenderDefault(n.Type, senderName)
}

// MarkRead persists a single read flip, ownership-scoped, then
// broadcasts MarkedOne so every open session converges.
func (s *Notifier) MarkRead(ctx context.Context, notificationID, recipientID uint) error {
	if err := s.notifications.MarkAsRead(notificationID, recipientID); err != nil {
		return err
	}
	if s.bridge != nil {
		if err := s.bridge.Publish(ctx, recipientID, realtime.MarkedOne{NotificationID: notificationID}); err != nil {
			log.Printf("notifier: read event publish failed for notification %d: %v", notificationID, err)
		}
	}
	return nil
}

// MarkAllRead persists the bulk read flip and broadcasts MarkedAll.
func (s *Notifier) MarkAllRead(ctx context.Context, recipientID uint) error {
	if err := s.notifications.MarkAllAsRead(recipientID); err != nil {
		return err
	}
	if s.bridge != nil {
		if err := s.bridge.Publish(ctx, recipientID, realtime.MarkedAll{}); err != nil {
			log.Printf("notifier: mark-all event publish failed for user %d: %v", recipientID, err)
		}
	}
	return nil
}
