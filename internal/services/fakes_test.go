package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/realtime"
	"github.com/pulsegram/backend/internal/repositories"
)

// In-memory fakes for the repository and transport interfaces. The
// token fake mirrors the storage layer's atomicity contract: Reserve is
// a single compare-and-increment under one lock.

type fakeNotificationRepo struct {
	mu      sync.Mutex
	nextID  uint
	records []*models.Notification
	failAll bool
}

func (f *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("storage down")
	}
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	f.records = append(f.records, n)
	return nil
}

func (f *fakeNotificationRepo) GetByRecipientID(recipientID uint, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		if f.records[i].RecipientID == recipientID {
			out = append(out, *f.records[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) GetGrouped(recipientID uint) ([]models.Notification, []models.Notification, []models.Notification, []models.Notification, error) {
	return nil, nil, nil, nil, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.records {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAsRead(notificationID, recipientID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.records {
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return repositories.ErrNotOwned
}

func (f *fakeNotificationRepo) MarkAllAsRead(recipientID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.records {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) CreateUser(u *models.User) error { f.users[u.ID] = u; return nil }
func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return u, nil
}
func (f *fakeUserRepo) GetUserByEmail(string) (*models.User, error) {
	return nil, errors.New("record not found")
}
func (f *fakeUserRepo) GetUserByFirebaseUID(string) (*models.User, error) {
	return nil, errors.New("record not found")
}
func (f *fakeUserRepo) UpdateUser(*models.User) error             { return nil }
func (f *fakeUserRepo) DeleteUser(uint) error                     { return nil }
func (f *fakeUserRepo) SearchUsers(string) ([]models.User, error) { return nil, nil }

type fakePreferenceRepo struct {
	prefs map[uint]*models.NotificationPreferences
}

func (f *fakePreferenceRepo) GetPreferences(userID uint) (*models.NotificationPreferences, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	p := models.DefaultPreferences(userID)
	f.prefs[userID] = p
	return p, nil
}

func (f *fakePreferenceRepo) UpdatePreferences(userID uint, req *models.UpdatePreferencesRequest) (*models.NotificationPreferences, error) {
	p, _ := f.GetPreferences(userID)
	p.Apply(req)
	return p, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	limits map[uint]*models.TokenLimit
	now    func() time.Time
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{limits: make(map[uint]*models.TokenLimit), now: time.Now}
}

func (f *fakeTokenRepo) GetOrCreate(userID uint) (*models.TokenLimit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.limits[userID]; ok {
		snapshot := *l
		return &snapshot, nil
	}
	l := models.NewTokenLimit(userID, f.now())
	f.limits[userID] = l
	snapshot := *l
	return &snapshot, nil
}

func (f *fakeTokenRepo) ResetIfElapsed(limit *models.TokenLimit) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	if !limit.ResetAt.Before(now) {
		return false, nil
	}
	stored := f.limits[limit.UserID]
	if stored != nil && stored.ResetAt.Before(now) {
		stored.Usage = 0
		stored.ResetAt = now.Add(24 * time.Hour)
	}
	limit.Usage = 0
	limit.ResetAt = now.Add(24 * time.Hour)
	return true, nil
}

func (f *fakeTokenRepo) Reserve(userID uint, cost int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limits[userID]
	if !ok {
		return false, nil
	}
	if l.Usage+cost > l.Limit {
		return false, nil
	}
	l.Usage += cost
	l.LifetimeUsage += cost
	l.LastActivity = f.now()
	return true, nil
}

func (f *fakeTokenRepo) RecordSpend(userID uint, tokens int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limits[userID]
	if !ok {
		return repositories.ErrNoTokenLimit
	}
	l.Usage += tokens
	l.LifetimeUsage += tokens
	l.LastActivity = f.now()
	return nil
}

func (f *fakeTokenRepo) UpgradeTier(userID uint, tier models.TokenTier) (*models.TokenLimit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limits[userID]
	if !ok {
		l = models.NewTokenLimit(userID, f.now())
		f.limits[userID] = l
	}
	l.Tier = tier
	l.Limit = models.TierLimits[tier]
	snapshot := *l
	return &snapshot, nil
}

type fakeUsageRepo struct {
	mu      sync.Mutex
	records []*models.TokenUsageRecord
	fail    bool
}

func (f *fakeUsageRepo) Append(_ context.Context, r *models.TokenUsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("audit store down")
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeUsageRepo) GetByUserID(_ context.Context, userID uint, limit int64) ([]models.TokenUsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TokenUsageRecord
	for i := len(f.records) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.records[i].UserID == userID {
			out = append(out, *f.records[i])
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []realtime.Event
	users  []uint
	fail   bool
}

func (f *fakePublisher) Publish(_ context.Context, userID uint, ev realtime.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("relay down")
	}
	f.events = append(f.events, ev)
	f.users = append(f.users, userID)
	return nil
}

type fakePush struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakePush) SendPush(_ context.Context, deviceToken, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("fcm down")
	}
	f.sent = append(f.sent, body)
	return nil
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeEmail) SendEmail(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, body)
	return nil
}
