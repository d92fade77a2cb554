// Package notifycenter holds the consumer-side notification state
// machine: it mirrors the server's persisted state from an initial
// fetch, then folds relay events into local state so every open session
// of a user converges without refetching.
package notifycenter

import (
	"context"
	"sync"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/realtime"
	"github.com/pulsegram/backend/internal/services"
)

// State is the center lifecycle. Filter and grouping are derived views
// over ready state, not states of their own.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Backend is the RPC surface the center needs. Implemented over the
// HTTP API in clients and by fakes in tests.
type Backend interface {
	Fetch(ctx context.Context, limit int) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, notificationID uint) error
	MarkAllRead(ctx context.Context) error
}

const defaultFetchLimit = 50

// Center is one session's notification state. Safe for concurrent use;
// the relay subscription goroutine calls Apply while the UI goroutine
// reads views and issues mutations.
type Center struct {
	mu            sync.Mutex
	state         State
	backend       Backend
	notifications []models.Notification
	unreadCount   int64
}

// New returns an idle center over the given backend.
func New(backend Backend) *Center {
	return &Center{state: StateIdle, backend: backend}
}

// Load performs the initial fetch, moving idle -> loading -> ready.
// Also the catch-up path after missed relay events.
func (c *Center) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	notifications, unread, err := c.backend.Fetch(ctx, defaultFetchLimit)
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.notifications = notifications
	c.unreadCount = unread
	c.state = StateReady
	c.mu.Unlock()
	return nil
}

// Apply folds a relay event into local state. Pure data updates, no
// network effect, idempotent with respect to already-read entries so a
// session's own optimistic update and the echoed broadcast don't double
// count.
func (c *Center) Apply(ev realtime.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case realtime.NewNotification:
		c.notifications = append([]models.Notification{e.Notification}, c.notifications...)
		if !e.Notification.IsRead {
			c.unreadCount++
		}
	case realtime.MarkedOne:
		for i := range c.notifications {
			if c.notifications[i].ID == e.NotificationID {
				if !c.notifications[i].IsRead {
					c.notifications[i].IsRead = true
					if c.unreadCount > 0 {
						c.unreadCount--
					}
				}
				break
			}
		}
	case realtime.MarkedAll:
		for i := range c.notifications {
			c.notifications[i].IsRead = true
		}
		c.unreadCount = 0
	}
}

// Open is the panel-open policy: when anything is unread, issue a bulk
// mark-read and clear local state optimistically. The broadcast that
// follows converges the user's other sessions.
func (c *Center) Open(ctx context.Context) error {
	c.mu.Lock()
	unread := c.unreadCount
	c.mu.Unlock()

	if unread == 0 {
		return nil
	}
	if err := c.backend.MarkAllRead(ctx); err != nil {
		return err
	}
	c.Apply(realtime.MarkedAll{})
	return nil
}

// ReadOne marks a single notification read, independent of the
// panel-open bulk behavior.
func (c *Center) ReadOne(ctx context.Context, notificationID uint) error {
	if err := c.backend.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	c.Apply(realtime.MarkedOne{NotificationID: notificationID})
	return nil
}

// CurrentState reports the lifecycle state.
func (c *Center) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// UnreadCount reports the local unread counter.
func (c *Center) UnreadCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unreadCount
}

// Notifications returns a copy of the local list, newest first.
func (c *Center) Notifications() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// Filter returns the subset matching a filter key: all, unread, or a
// category (social/groups/pages/system/security). Pure derived view.
func (c *Center) Filter(key string) []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.Notification
	for _, n := range c.notifications {
		switch key {
		case "", "all":
			out = append(out, n)
		case "unread":
			if !n.IsRead {
				out = append(out, n)
			}
		default:
			if n.Type.Category() == key {
				out = append(out, n)
			}
		}
	}
	return out
}

// Grouped buckets the local list by age relative to now: today,
// yesterday, thisWeek, older. Mirrors the server's grouped query so the
// panel can render either source the same way.
type Grouped struct {
	Today     []models.Notification
	Yesterday []models.Notification
	ThisWeek  []models.Notification
	Older     []models.Notification
}

// GroupByDay computes the grouped view at the given wall-clock instant.
func (c *Center) GroupByDay(now time.Time) Grouped {
	c.mu.Lock()
	defer c.mu.Unlock()

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	var g Grouped
	for _, n := range c.notifications {
		switch {
		case !n.CreatedAt.Before(todayStart):
			g.Today = append(g.Today, n)
		case !n.CreatedAt.Before(yesterdayStart):
			g.Yesterday = append(g.Yesterday, n)
		case !n.CreatedAt.Before(weekStart):
			g.ThisWeek = append(g.ThisWeek, n)
		default:
			g.Older = append(g.Older, n)
		}
	}
	return g
}

// RenderText resolves the display string for one entry: explicit
// content wins, otherwise the type template keyed by sender name.
func RenderText(n models.Notification, senderName string) string {
	if n.Content != nil && *n.Content != "" {
		return *n.Content
	}
	return services.RenderDefault(n.Type, senderName)
}
