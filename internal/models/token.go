package models

import "time"

// TokenTier is a named service level determining the daily token budget.
type TokenTier string

const (
	TierFree       TokenTier = "FREE"
	TierBasic      TokenTier = "BASIC"
	TierPro        TokenTier = "PRO"
	TierEnterprise TokenTier = "ENTERPRISE"
)

// TierLimits maps each tier to its daily token cap.
var TierLimits = map[TokenTier]int64{
	TierFree:       150,
	TierBasic:      1000,
	TierPro:        5000,
	TierEnterprise: 10000,
}

// Valid reports whether t is a known tier.
func (t TokenTier) Valid() bool {
	_, ok := TierLimits[t]
	return ok
}

// TokenLimit is the per-user token balance (PostgreSQL, 1:1 with user).
// Usage resets lazily: any read or spend that observes an elapsed
// ResetAt zeroes Usage and advances ResetAt by 24h before evaluating.
type TokenLimit struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	UserID             uint       `json:"user_id" gorm:"uniqueIndex"`
	Tier               TokenTier  `json:"tier" gorm:"size:20;default:FREE"`
	Limit              int64      `json:"limit" gorm:"column:daily_limit"`
	Usage              int64      `json:"usage" gorm:"column:daily_usage;default:0"`
	ResetAt            time.Time  `json:"reset_at"`
	MonthlyAllocation  int64      `json:"monthly_allocation"`
	LifetimeUsage      int64      `json:"lifetime_usage"`
	PreviousMonthCarry int64      `json:"previous_month_carry"`
	BonusTokens        int64      `json:"bonus_tokens"`
	SubscriptionPeriod string     `json:"subscription_period,omitempty" gorm:"size:20"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty"`
	PreferredModel     string     `json:"preferred_model,omitempty" gorm:"size:60"`
	LastActivity       time.Time  `json:"last_activity"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewTokenLimit returns the lazily-created FREE-tier row for a user.
func NewTokenLimit(userID uint, now time.Time) *TokenLimit {
	return &TokenLimit{
		UserID:       userID,
		Tier:         TierFree,
		Limit:        TierLimits[TierFree],
		Usage:        0,
		ResetAt:      now.Add(24 * time.Hour),
		LastActivity: now,
	}
}

// UpgradeTierRequest changes a user's tier; the daily limit is
// recomputed from TierLimits and current usage is left untouched.
type UpgradeTierRequest struct {
	Tier TokenTier `json:"tier" validate:"required"`
}

// ConsumeTokensRequest meters one AI-backed operation.
type ConsumeTokensRequest struct {
	OperationType    string                 `json:"operation_type" validate:"required"`
	Tokens           int64                  `json:"tokens" validate:"required,min=1"`
	Model            string                 `json:"model,omitempty"`
	PromptTokens     int64                  `json:"prompt_tokens,omitempty"`
	CompletionTokens int64                  `json:"completion_tokens,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// TokenUsageRecord is the append-only audit entry for one metered
// operation, stored in MongoDB. Never mutated after insert.
type TokenUsageRecord struct {
	ID               string                 `bson:"_id" json:"id"`
	UserID           uint                   `bson:"user_id" json:"user_id"`
	OperationType    string                 `bson:"operation_type" json:"operation_type"`
	TokensUsed       int64                  `bson:"tokens_used" json:"tokens_used"`
	Model            string                 `bson:"model,omitempty" json:"model,omitempty"`
	PromptTokens     int64                  `bson:"prompt_tokens,omitempty" json:"prompt_tokens,omitempty"`
	CompletionTokens int64                  `bson:"completion_tokens,omitempty" json:"completion_tokens,omitempty"`
	Success          bool                   `bson:"success" json:"success"`
	ResponseTimeMs   int64                  `bson:"response_time_ms,omitempty" json:"response_time_ms,omitempty"`
	CostMultiplier   float64                `bson:"cost_multiplier,omitempty" json:"cost_multiplier,omitempty"`
	Metadata         map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt        time.Time              `bson:"created_at" json:"created_at"`
}
