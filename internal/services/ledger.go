package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
)

// ErrTokenLimitExceeded is the domain rejection for a spend that would
// push usage past the daily cap. Recoverable: wait for the reset or
// upgrade the tier.
var ErrTokenLimitExceeded = errors.New("token limit exceeded")

// Availability is the result of a budget check.
type Availability struct {
	HasTokens  bool               `json:"has_tokens"`
	TokenLimit *models.TokenLimit `json:"token_limit"`
}

// Ledger meters AI-backed feature usage against per-user daily budgets.
// The admission + increment path is a single conditional update at the
// storage layer, so parallel requests cannot jointly overspend.
type Ledger struct {
	tokens repositories.TokenRepository
	usage  repositories.UsageRepository
}

// NewLedger wires the token ledger. usage may be nil when no audit
// store is configured.
func NewLedger(tokens repositories.TokenRepository, usage repositories.UsageRepository) *Ledger {
	return &Ledger{tokens: tokens, usage: usage}
}

// CheckAvailability reports whether the user can afford operationCost.
// Creates the FREE-tier row on first touch and applies the lazy daily
// reset before evaluating. skipCheck short-circuits to true for
// zero-cost operations.
func (l *Ledger) CheckAvailability(ctx context.Context, userID uint, operationCost int64, skipCheck bool) (*Availability, error) {
	limit, err := l.tokens.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if skipCheck {
		return &Availability{HasTokens: true, TokenLimit: limit}, nil
	}

	if _, err := l.tokens.ResetIfElapsed(limit); err != nil {
		return nil, err
	}

	return &Availability{
		HasTokens:  limit.Usage+operationCost <= limit.Limit,
		TokenLimit: limit,
	}, nil
}

// UsageInput carries the audit metadata for one metered operation.
type UsageInput struct {
	OperationType    string
	TokensUsed       int64
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	Success          bool
	ResponseTimeMs   int64
	CostMultiplier   float64
	Metadata         map[string]interface{}
}

// RecordUsage increments the balance and appends an audit record.
// Requires an existing ledger row; returns false if it is absent or the
// increment fails. The audit append is best-effort after the fact: its
// failure is logged for reconciliation and never rolls back the
// already-applied increment.
func (l *Ledger) RecordUsage(ctx context.Context, userID uint, in UsageInput) bool {
	if err := l.tokens.RecordSpend(userID, in.TokensUsed); err != nil {
		log.Printf("ledger: spend update failed for user %d: %v", userID, err)
		return false
	}

	l.appendAudit(ctx, userID, in)
	return true
}

// Consume is the atomic spend path AI features call: one conditional
// increment admits and reserves in a single step, then the audit record
// is appended best-effort. Applies the lazy reset first so a stale
// window never causes a spurious rejection.
func (l *Ledger) Consume(ctx context.Context, userID uint, in UsageInput) (*models.TokenLimit, error) {
	limit, err := l.tokens.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if _, err := l.tokens.ResetIfElapsed(limit); err != nil {
		return nil, err
	}

	ok, err := l.tokens.Reserve(userID, in.TokensUsed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenLimitExceeded
	}

	l.appendAudit(ctx, userID, in)

	refreshed, err := l.tokens.GetOrCreate(userID)
	if err != nil {
		// The spend already happened; surface the stale snapshot.
		limit.Usage += in.TokensUsed
		return limit, nil
	}
	return refreshed, nil
}

// UpgradeTier moves the user to a new tier; the daily limit follows the
// static tier table and current usage is untouched.
func (l *Ledger) UpgradeTier(ctx context.Context, userID uint, tier models.TokenTier) (*models.TokenLimit, error) {
	return l.tokens.UpgradeTier(userID, tier)
}

// UsageHistory returns recent audit records, newest first.
func (l *Ledger) UsageHistory(ctx context.Context, userID uint, limit int64) ([]models.TokenUsageRecord, error) {
	if l.usage == nil {
		return nil, nil
	}
	return l.usage.GetByUserID(ctx, userID, limit)
}

func (l *Ledger) appendAudit(ctx context.Context, userID uint, in UsageInput) {
	if l.usage == nil {
		return
	}
	record := &models.TokenUsageRecord{
		ID:               uuid.NewString(),
		UserID:           userID,
		OperationType:    in.OperationType,
		TokensUsed:       in.TokensUsed,
		Model:            in.Model,
		PromptTokens:     in.PromptTokens,
		CompletionTokens: in.CompletionTokens,
		Success:          in.Success,
		ResponseTimeMs:   in.ResponseTimeMs,
		CostMultiplier:   in.CostMultiplier,
		Metadata:         in.Metadata,
		CreatedAt:        time.Now(),
	}
	if err := l.usage.Append(ctx, record); err != nil {
		log.Printf("ledger: usage audit append failed for user %d op %s: %v", userID, in.OperationType, err)
	}
}
