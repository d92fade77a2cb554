package repositories

import (
	"errors"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"gorm.io/gorm"
)

// ErrNoTokenLimit is returned by RecordSpend when no ledger row exists
// for the user; callers are expected to have gone through GetOrCreate
// (via a check) first.
var ErrNoTokenLimit = errors.New("no token limit row for user")

// TokenRepository defines the interface for token ledger storage.
// Reserve is the single atomic admission + increment step; the separate
// check/record pair exists only for the external read surface.
type TokenRepository interface {
	GetOrCreate(userID uint) (*models.TokenLimit, error)
	ResetIfElapsed(limit *models.TokenLimit) (bool, error)
	Reserve(userID uint, cost int64) (bool, error)
	RecordSpend(userID uint, tokens int64) error
	UpgradeTier(userID uint, tier models.TokenTier) (*models.TokenLimit, error)
}

type postgresTokenRepository struct {
	db *gorm.DB
}

func NewPostgresTokenRepository(db *gorm.DB) TokenRepository {
	return &postgresTokenRepository{db: db}
}

// GetOrCreate returns the user's ledger row, creating a FREE-tier row
// on first access.
func (r *postgresTokenRepository) GetOrCreate(userID uint) (*models.TokenLimit, error) {
	var limit models.TokenLimit
	err := r.db.Where("user_id = ?", userID).First(&limit).Error
	if err == nil {
		return &limit, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	created := models.NewTokenLimit(userID, time.Now())
	if err := r.db.Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

// ResetIfElapsed applies the lazy daily reset: if ResetAt has passed,
// usage goes back to zero and the window advances 24h. Returns whether
// a reset happened. The WHERE clause repeats the elapsed check so two
// concurrent observers cannot double-reset.
func (r *postgresTokenRepository) ResetIfElapsed(limit *models.TokenLimit) (bool, error) {
	now := time.Now()
	if !limit.ResetAt.Before(now) {
		return false, nil
	}

	res := r.db.Model(&models.TokenLimit{}).
		Where("user_id = ? AND reset_at < ?", limit.UserID, now).
		Updates(map[string]interface{}{
			"daily_usage": 0,
			"reset_at":    now.Add(24 * time.Hour),
		})
	if res.Error != nil {
		return false, res.Error
	}
	limit.Usage = 0
	limit.ResetAt = now.Add(24 * time.Hour)
	return true, nil
}

// Reserve admits and increments in one conditional UPDATE:
//
//	UPDATE token_limits SET daily_usage = daily_usage + cost
//	WHERE user_id = ? AND daily_usage + cost <= daily_limit
//
// RowsAffected == 0 means the budget would be exceeded. Concurrent
// reservations against the same row serialize at the storage layer, so
// two near-limit requests can never jointly overspend.
func (r *postgresTokenRepository) Reserve(userID uint, cost int64) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.TokenLimit{}).
		Where("user_id = ? AND daily_usage + ? <= daily_limit", userID, cost).
		Updates(map[string]interface{}{
			"daily_usage":    gorm.Expr("daily_usage + ?", cost),
			"lifetime_usage": gorm.Expr("lifetime_usage + ?", cost),
			"last_activity":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RecordSpend increments usage unconditionally for callers holding a
// prior availability check. Fails if the row does not exist.
func (r *postgresTokenRepository) RecordSpend(userID uint, tokens int64) error {
	res := r.db.Model(&models.TokenLimit{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"daily_usage":    gorm.Expr("daily_usage + ?", tokens),
			"lifetime_usage": gorm.Expr("lifetime_usage + ?", tokens),
			"last_activity":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoTokenLimit
	}
	return nil
}

// UpgradeTier changes the tier and recomputes the daily limit from the
// static tier table. Current usage is not adjusted.
func (r *postgresTokenRepository) UpgradeTier(userID uint, tier models.TokenTier) (*models.TokenLimit, error) {
	limit, err := r.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	limit.Tier = tier
	limit.Limit = models.TierLimits[tier]
	if err := r.db.Save(limit).Error; err != nil {
		return nil, err
	}
	return limit, nil
}
