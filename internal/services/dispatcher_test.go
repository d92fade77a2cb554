package services

import (
	"context"
	"testing"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestInQuietHours(t *testing.T) {
	at := func(clock string) time.Time {
		parsed, err := time.Parse("15:04", clock)
		require.NoError(t, err)
		return time.Date(2026, 3, 14, parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		now        string
		start, end string
		want       bool
	}{
		{"inside plain window", "14:00", "13:00", "15:00", true},
		{"before plain window", "12:59", "13:00", "15:00", false},
		{"end bound excluded", "15:00", "13:00", "15:00", false},
		{"start bound included", "13:00", "13:00", "15:00", true},
		{"wraparound late evening", "23:30", "22:00", "08:00", true},
		{"wraparound early morning", "07:59", "22:00", "08:00", true},
		{"wraparound midday outside", "12:00", "22:00", "08:00", false},
		{"wraparound end excluded", "08:00", "22:00", "08:00", false},
		{"equal bounds never quiet", "03:00", "03:00", "03:00", false},
		{"malformed start", "12:00", "25:99", "15:00", false},
		{"malformed end", "12:00", "10:00", "banana", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, InQuietHours(at(tt.now), tt.start, tt.end))
		})
	}
}

func newTestDispatcher(prefs *models.NotificationPreferences, push *fakePush, email *fakeEmail) *Dispatcher {
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Email: "ada@example.com", DeviceToken: "device-1"},
	}}
	prefRepo := &fakePreferenceRepo{prefs: map[uint]*models.NotificationPreferences{1: prefs}}
	d := NewDispatcher(prefRepo, users, push, email)
	// Pin the clock to midday so the default quiet window is inactive.
	d.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return d
}

func TestDispatchRoutesPerPreferences(t *testing.T) {
	notification := &models.Notification{RecipientID: 1, Type: models.NotificationFollow, Priority: models.PriorityNormal}

	t.Run("push enabled sends push", func(t *testing.T) {
		push, email := &fakePush{}, &fakeEmail{}
		prefs := models.DefaultPreferences(1)
		newTestDispatcher(prefs, push, email).Dispatch(context.Background(), notification, "ada started following you")
		require.Equal(t, []string{"ada started following you"}, push.sent)
		require.Empty(t, email.sent)
	})

	t.Run("push disabled sends nothing", func(t *testing.T) {
		push, email := &fakePush{}, &fakeEmail{}
		prefs := models.DefaultPreferences(1)
		prefs.PushEnabled = false
		newTestDispatcher(prefs, push, email).Dispatch(context.Background(), notification, "x")
		require.Empty(t, push.sent)
		require.Empty(t, email.sent)
	})

	t.Run("email requires high priority", func(t *testing.T) {
		push, email := &fakePush{}, &fakeEmail{}
		prefs := models.DefaultPreferences(1)
		prefs.EmailEnabled = true

		d := newTestDispatcher(prefs, push, email)
		d.Dispatch(context.Background(), notification, "normal priority")
		require.Empty(t, email.sent)

		urgent := &models.Notification{RecipientID: 1, Type: models.NotificationSecurityAlert, Priority: models.PriorityUrgent}
		d.Dispatch(context.Background(), urgent, "new login to your account")
		require.Equal(t, []string{"new login to your account"}, email.sent)
	})

	t.Run("quiet hours suppress push and email", func(t *testing.T) {
		push, email := &fakePush{}, &fakeEmail{}
		prefs := models.DefaultPreferences(1)
		prefs.EmailEnabled = true
		prefs.QuietHoursEnabled = true
		prefs.QuietHoursStart = "11:00"
		prefs.QuietHoursEnd = "13:00"

		urgent := &models.Notification{RecipientID: 1, Type: models.NotificationSecurityAlert, Priority: models.PriorityUrgent}
		newTestDispatcher(prefs, push, email).Dispatch(context.Background(), urgent, "x")
		require.Empty(t, push.sent)
		require.Empty(t, email.sent)
	})

	t.Run("quiet window disabled flag wins over configured window", func(t *testing.T) {
		push, email := &fakePush{}, &fakeEmail{}
		prefs := models.DefaultPreferences(1)
		prefs.QuietHoursEnabled = false
		prefs.QuietHoursStart = "11:00"
		prefs.QuietHoursEnd = "13:00"

		newTestDispatcher(prefs, push, email).Dispatch(context.Background(), notification, "through")
		require.Equal(t, []string{"through"}, push.sent)
	})

	t.Run("push failure is swallowed", func(t *testing.T) {
		push, email := &fakePush{fail: true}, &fakeEmail{}
		prefs := models.DefaultPreferences(1)
		// Must not panic or propagate.
		newTestDispatcher(prefs, push, email).Dispatch(context.Background(), notification, "x")
	})
}

func TestDispatchSkipsUsersWithoutDeviceToken(t *testing.T) {
	push := &fakePush{}
	users := &fakeUserRepo{users: map[uint]*models.User{2: {ID: 2, Email: "b@example.com"}}}
	prefRepo := &fakePreferenceRepo{prefs: map[uint]*models.NotificationPreferences{}}
	d := NewDispatcher(prefRepo, users, push, nil)
	d.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	d.Dispatch(context.Background(), &models.Notification{RecipientID: 2, Type: models.NotificationPostLike}, "x")
	require.Empty(t, push.sent)
}
