package services

import (
	"context"
	"log"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
)

// PushSender delivers one OS-level push notification.
type PushSender interface {
	SendPush(ctx context.Context, deviceToken, title, body string) error
}

// EmailSender delivers one notification email.
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// Dispatcher routes a persisted notification to the user's enabled
// delivery channels. The in-app record already exists by the time
// Dispatch runs; quiet hours gate push and email delivery only, never
// persistence or in-app display. Channel failures are logged and never
// propagated, the persisted row is the source of truth.
type Dispatcher struct {
	preferences repositories.PreferenceRepository
	users       repositories.UserRepository
	push        PushSender
	email       EmailSender
	now         func() time.Time
}

// NewDispatcher wires the channel dispatcher. push and email may be nil
// when the corresponding transport is not configured.
func NewDispatcher(prefs repositories.PreferenceRepository, users repositories.UserRepository, push PushSender, email EmailSender) *Dispatcher {
	return &Dispatcher{
		preferences: prefs,
		users:       users,
		push:        push,
		email:       email,
		now:         time.Now,
	}
}

// Dispatch fans one notification out to push and email per the
// recipient's preferences.
func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification, displayText string) {
	prefs, err := d.preferences.GetPreferences(n.RecipientID)
	if err != nil {
		log.Printf("dispatcher: preferences lookup failed for user %d: %v", n.RecipientID, err)
		return
	}

	quiet := prefs.QuietHoursEnabled && InQuietHours(d.now(), prefs.QuietHoursStart, prefs.QuietHoursEnd)

	if d.push != nil && prefs.PushEnabled && !quiet {
		d.sendPush(ctx, n, displayText)
	}

	// Email is reserved for HIGH and URGENT notifications.
	if d.email != nil && prefs.EmailEnabled && !quiet &&
		(n.Priority == models.PriorityHigh || n.Priority == models.PriorityUrgent) {
		d.sendEmail(n, displayText)
	}
}

func (d *Dispatcher) sendPush(ctx context.Context, n *models.Notification, displayText string) {
	user, err := d.users.GetUserByID(n.RecipientID)
	if err != nil || user.DeviceToken == "" {
		return
	}
	if err := d.push.SendPush(ctx, user.DeviceToken, "Pulsegram", displayText); err != nil {
		log.Printf("dispatcher: push delivery failed for user %d: %v", n.RecipientID, err)
	}
}

func (d *Dispatcher) sendEmail(n *models.Notification, displayText string) {
	user, err := d.users.GetUserByID(n.RecipientID)
	if err != nil || user.Email == "" {
		return
	}
	if err := d.email.SendEmail(user.Email, "New notification", displayText); err != nil {
		log.Printf("dispatcher: email delivery failed for user %d: %v", n.RecipientID, err)
	}
}

// InQuietHours reports whether t falls inside the [start, end) window.
// Windows that cross midnight (22:00-08:00) wrap. Malformed or equal
// bounds yield false; user input is accepted as-is and never "fixed".
func InQuietHours(t time.Time, start, end string) bool {
	startMin, okStart := parseClock(start)
	endMin, okEnd := parseClock(end)
	if !okStart || !okEnd || startMin == endMin {
		return false
	}

	nowMin := t.Hour()*60 + t.Minute()
	if startMin < endMin {
		return nowMin >= startMin && nowMin < endMin
	}
	// Wraps midnight.
	return nowMin >= startMin || nowMin < endMin
}

func parseClock(v string) (int, bool) {
	parsed, err := time.Parse("15:04", v)
	if err != nil {
		return 0, false
	}
	return parsed.Hour()*60 + parsed.Minute(), true
}
