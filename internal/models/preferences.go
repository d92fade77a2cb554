package models

import "time"

// NotificationPreferences holds the per-user channel toggles and quiet
// hours window. One row per user, created lazily with defaults on first
// read.
type NotificationPreferences struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"uniqueIndex"`
	InAppEnabled      bool      `json:"in_app_enabled" gorm:"default:true"`
	EmailEnabled      bool      `json:"email_enabled" gorm:"default:false"`
	PushEnabled       bool      `json:"push_enabled" gorm:"default:true"`
	QuietHoursEnabled bool      `json:"quiet_hours_enabled" gorm:"default:false"`
	QuietHoursStart   string    `json:"quiet_hours_start" gorm:"size:5"` // "HH:MM" local time
	QuietHoursEnd     string    `json:"quiet_hours_end" gorm:"size:5"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Quiet hours window seeded the first time QuietHoursEnabled is turned
// on without an explicit start/end.
const (
	DefaultQuietHoursStart = "22:00"
	DefaultQuietHoursEnd   = "08:00"
)

// DefaultPreferences returns the lazily-created row for a user.
func DefaultPreferences(userID uint) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:       userID,
		InAppEnabled: true,
		EmailEnabled: false,
		PushEnabled:  true,
	}
}

// Apply merges a partial update; nil fields keep their prior value.
// Enabling quiet hours for the first time without an explicit window
// seeds the default one.
func (p *NotificationPreferences) Apply(req *UpdatePreferencesRequest) {
	if req.InAppEnabled != nil {
		p.InAppEnabled = *req.InAppEnabled
	}
	if req.EmailEnabled != nil {
		p.EmailEnabled = *req.EmailEnabled
	}
	if req.PushEnabled != nil {
		p.PushEnabled = *req.PushEnabled
	}
	if req.QuietHoursStart != nil {
		p.QuietHoursStart = *req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		p.QuietHoursEnd = *req.QuietHoursEnd
	}
	if req.QuietHoursEnabled != nil {
		p.QuietHoursEnabled = *req.QuietHoursEnabled
		if p.QuietHoursEnabled && p.QuietHoursStart == "" && p.QuietHoursEnd == "" {
			p.QuietHoursStart = DefaultQuietHoursStart
			p.QuietHoursEnd = DefaultQuietHoursEnd
		}
	}
}

// UpdatePreferencesRequest is a partial update; nil fields keep their
// prior value. Start/end are accepted as-is, start==end included.
type UpdatePreferencesRequest struct {
	InAppEnabled      *bool   `json:"in_app_enabled,omitempty"`
	EmailEnabled      *bool   `json:"email_enabled,omitempty"`
	PushEnabled       *bool   `json:"push_enabled,omitempty"`
	QuietHoursEnabled *bool   `json:"quiet_hours_enabled,omitempty"`
	QuietHoursStart   *string `json:"quiet_hours_start,omitempty" validate:"omitempty,len=5"`
	QuietHoursEnd     *string `json:"quiet_hours_end,omitempty" validate:"omitempty,len=5"`
}
