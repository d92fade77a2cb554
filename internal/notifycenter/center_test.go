package notifycenter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/realtime"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	notifications []models.Notification
	unread        int64
	fetchErr      error
	markAllCalls  int
	markOneCalls  []uint
	markErr       error
}

func (f *fakeBackend) Fetch(context.Context, int) ([]models.Notification, int64, error) {
	if f.fetchErr != nil {
		return nil, 0, f.fetchErr
	}
	return f.notifications, f.unread, nil
}

func (f *fakeBackend) MarkRead(_ context.Context, id uint) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markOneCalls = append(f.markOneCalls, id)
	return nil
}

func (f *fakeBackend) MarkAllRead(context.Context) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markAllCalls++
	return nil
}

func notif(id uint, typ models.NotificationType, read bool, age time.Duration) models.Notification {
	return models.Notification{
		ID:          id,
		Type:        typ,
		RecipientID: 1,
		IsRead:      read,
		CreatedAt:   time.Now().Add(-age),
	}
}

func TestLoadMovesIdleToReady(t *testing.T) {
	backend := &fakeBackend{
		notifications: []models.Notification{
			notif(1, models.NotificationFollow, false, time.Minute),
			notif(2, models.NotificationPostLike, true, time.Hour),
		},
		unread: 1,
	}
	c := New(backend)
	require.Equal(t, StateIdle, c.CurrentState())

	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, StateReady, c.CurrentState())
	require.Equal(t, int64(1), c.UnreadCount())
	require.Len(t, c.Notifications(), 2)
}

func TestLoadFailureReturnsToIdle(t *testing.T) {
	backend := &fakeBackend{fetchErr: errors.New("network down")}
	c := New(backend)

	require.Error(t, c.Load(context.Background()))
	require.Equal(t, StateIdle, c.CurrentState())
}

func TestApplyNewNotificationPrepends(t *testing.T) {
	backend := &fakeBackend{notifications: []models.Notification{
		notif(1, models.NotificationFollow, true, time.Hour),
	}}
	c := New(backend)
	require.NoError(t, c.Load(context.Background()))

	c.Apply(realtime.NewNotification{Notification: notif(2, models.NotificationMention, false, 0)})

	list := c.Notifications()
	require.Equal(t, uint(2), list[0].ID, "newest first")
	require.Equal(t, int64(1), c.UnreadCount())

	// An already-read event must not bump the counter.
	c.Apply(realtime.NewNotification{Notification: notif(3, models.NotificationShare, true, 0)})
	require.Equal(t, int64(1), c.UnreadCount())
}

func TestApplyMarkedOneIsIdempotent(t *testing.T) {
	backend := &fakeBackend{
		notifications: []models.Notification{
			notif(1, models.NotificationFollow, false, time.Minute),
			notif(2, models.NotificationPostLike, false, time.Hour),
		},
		unread: 2,
	}
	c := New(backend)
	require.NoError(t, c.Load(context.Background()))

	c.Apply(realtime.MarkedOne{NotificationID: 1})
	require.Equal(t, int64(1), c.UnreadCount())

	// The echoed broadcast of our own mark arrives; no double decrement.
	c.Apply(realtime.MarkedOne{NotificationID: 1})
	require.Equal(t, int64(1), c.UnreadCount())

	// Unknown id is a no-op.
	c.Apply(realtime.MarkedOne{NotificationID: 99})
	require.Equal(t, int64(1), c.UnreadCount())
}

func TestOpenMarksAllAndConvergesSessions(t *testing.T) {
	backend := &fakeBackend{
		notifications: []models.Notification{
			notif(1, models.NotificationFollow, false, time.Minute),
			notif(2, models.NotificationPostLike, false, time.Hour),
		},
		unread: 2,
	}

	// Two sessions of the same user share one backend.
	first, second := New(backend), New(backend)
	require.NoError(t, first.Load(context.Background()))
	require.NoError(t, second.Load(context.Background()))

	require.NoError(t, first.Open(context.Background()))
	require.Equal(t, 1, backend.markAllCalls)
	require.Equal(t, int64(0), first.UnreadCount())

	// The relay echoes MarkedAll to the other session.
	second.Apply(realtime.MarkedAll{})
	require.Equal(t, int64(0), second.UnreadCount())
	for _, n := range second.Notifications() {
		require.True(t, n.IsRead)
	}
}

func TestOpenWithNothingUnreadIsANoOp(t *testing.T) {
	backend := &fakeBackend{notifications: []models.Notification{
		notif(1, models.NotificationFollow, true, time.Minute),
	}}
	c := New(backend)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.Open(context.Background()))
	require.Zero(t, backend.markAllCalls, "no unread means no network call")
}

func TestReadOneLeavesOthersUnread(t *testing.T) {
	backend := &fakeBackend{
		notifications: []models.Notification{
			notif(1, models.NotificationFollow, false, time.Minute),
			notif(2, models.NotificationPostLike, false, time.Hour),
		},
		unread: 2,
	}
	c := New(backend)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.ReadOne(context.Background(), 1))
	require.Equal(t, []uint{1}, backend.markOneCalls)
	require.Equal(t, int64(1), c.UnreadCount())

	list := c.Notifications()
	require.True(t, list[0].IsRead)
	require.False(t, list[1].IsRead)
}

func TestReadOneBackendFailureKeepsState(t *testing.T) {
	backend := &fakeBackend{
		notifications: []models.Notification{notif(1, models.NotificationFollow, false, time.Minute)},
		unread:        1,
	}
	c := New(backend)
	require.NoError(t, c.Load(context.Background()))

	backend.markErr = errors.New("server error")
	require.Error(t, c.ReadOne(context.Background(), 1))
	require.Equal(t, int64(1), c.UnreadCount(), "no optimistic update without server ack")
}

func TestFilterViews(t *testing.T) {
	backend := &fakeBackend{
		notifications: []models.Notification{
			notif(1, models.NotificationFollow, false, time.Minute),
			notif(2, models.NotificationGroupInvite, true, time.Hour),
			notif(3, models.NotificationSecurityAlert, false, time.Hour),
		},
		unread: 2,
	}
	c := New(backend)
	require.NoError(t, c.Load(context.Background()))

	require.Len(t, c.Filter("all"), 3)
	require.Len(t, c.Filter(""), 3)
	require.Len(t, c.Filter("unread"), 2)
	require.Len(t, c.Filter("groups"), 1)
	require.Len(t, c.Filter("security"), 1)
	require.Empty(t, c.Filter("pages"))
}

func TestGroupByDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	backend := &fakeBackend{notifications: []models.Notification{
		{ID: 1, Type: models.NotificationFollow, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, Type: models.NotificationPostLike, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: 3, Type: models.NotificationMention, CreatedAt: now.AddDate(0, 0, -4)},
		{ID: 4, Type: models.NotificationShare, CreatedAt: now.AddDate(0, 0, -30)},
	}}
	c := New(backend)
	require.NoError(t, c.Load(context.Background()))

	g := c.GroupByDay(now)
	require.Len(t, g.Today, 1)
	require.Len(t, g.Yesterday, 1)
	require.Len(t, g.ThisWeek, 1)
	require.Len(t, g.Older, 1)
	require.Equal(t, uint(1), g.Today[0].ID)
	require.Equal(t, uint(4), g.Older[0].ID)
}

func TestRenderTextPrefersExplicitContent(t *testing.T) {
	content := "Your export finished"
	withContent := models.Notification{Type: models.NotificationAIJobComplete, Content: &content}
	require.Equal(t, "Your export finished", RenderText(withContent, ""))

	templated := models.Notification{Type: models.NotificationFollow}
	require.Equal(t, "ada started following you", RenderText(templated, "ada"))
}
