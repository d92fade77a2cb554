package models

import "time"

// NotificationType is a closed category label driving both filtering and
// default display text. Adding a value here requires a matching template
// in the services dispatch table, which is enforced by a test.
type NotificationType string

const (
	// Social
	NotificationFollow         NotificationType = "FOLLOW"
	NotificationUnfollow       NotificationType = "UNFOLLOW"
	NotificationFriendRequest  NotificationType = "FRIEND_REQUEST"
	NotificationFriendAccepted NotificationType = "FRIEND_ACCEPTED"
	NotificationPostLike       NotificationType = "POST_LIKE"
	NotificationPostComment    NotificationType = "POST_COMMENT"
	NotificationCommentReply   NotificationType = "COMMENT_REPLY"
	NotificationMention        NotificationType = "MENTION"
	NotificationStoryReaction  NotificationType = "STORY_REACTION"
	NotificationShare          NotificationType = "SHARE"

	// Groups
	NotificationGroupInvite       NotificationType = "GROUP_INVITE"
	NotificationGroupJoinRequest  NotificationType = "GROUP_JOIN_REQUEST"
	NotificationGroupJoinApproved NotificationType = "GROUP_JOIN_APPROVED"
	NotificationGroupEvent        NotificationType = "GROUP_EVENT"

	// Pages
	NotificationPageInvite NotificationType = "PAGE_INVITE"
	NotificationPageLike   NotificationType = "PAGE_LIKE"
	NotificationPagePost   NotificationType = "PAGE_POST"

	// System
	NotificationSystemAnnounce NotificationType = "SYSTEM_ANNOUNCEMENT"
	NotificationAIJobComplete  NotificationType = "AI_JOB_COMPLETE"
	NotificationSecurityAlert  NotificationType = "SECURITY_ALERT"
)

// AllNotificationTypes lists every declared type. The template coverage
// test fails if a type is missing here or in the dispatch table.
var AllNotificationTypes = []NotificationType{
	NotificationFollow, NotificationUnfollow, NotificationFriendRequest,
	NotificationFriendAccepted, NotificationPostLike, NotificationPostComment,
	NotificationCommentReply, NotificationMention, NotificationStoryReaction,
	NotificationShare, NotificationGroupInvite, NotificationGroupJoinRequest,
	NotificationGroupJoinApproved, NotificationGroupEvent, NotificationPageInvite,
	NotificationPageLike, NotificationPagePost, NotificationSystemAnnounce,
	NotificationAIJobComplete, NotificationSecurityAlert,
}

// Category returns the filter bucket a type belongs to.
func (t NotificationType) Category() string {
	switch t {
	case NotificationGroupInvite, NotificationGroupJoinRequest,
		NotificationGroupJoinApproved, NotificationGroupEvent:
		return "groups"
	case NotificationPageInvite, NotificationPageLike, NotificationPagePost:
		return "pages"
	case NotificationSystemAnnounce, NotificationAIJobComplete:
		return "system"
	case NotificationSecurityAlert:
		return "security"
	default:
		return "social"
	}
}

// NotificationPriority orders delivery urgency.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityUrgent NotificationPriority = "URGENT"
)

// Notification represents a persisted user notification (PostgreSQL).
// After creation the only mutation is flipping IsRead; rows are never
// hard-deleted.
type Notification struct {
	ID           uint                 `json:"id" gorm:"primaryKey"`
	Type         NotificationType     `json:"type" gorm:"size:40;index"`
	RecipientID  uint                 `json:"recipient_id" gorm:"index"`
	SenderID     *uint                `json:"sender_id,omitempty" gorm:"index"` // nil for system notifications
	Content      *string              `json:"content,omitempty"`                // nil means the client renders from Type + sender
	Priority     NotificationPriority `json:"priority" gorm:"size:10;default:NORMAL"`
	IsRead       bool                 `json:"is_read" gorm:"default:false;index"`
	IsActionable bool                 `json:"is_actionable" gorm:"default:false"`
	ActionLabel  string               `json:"action_label,omitempty"`
	ActionURL    string               `json:"action_url,omitempty"`
	ImageURL     string               `json:"image_url,omitempty"`
	URL          string               `json:"url,omitempty"` // fallback navigation target
	GroupID      *uint                `json:"group_id,omitempty" gorm:"index"` // filter-only reference
	PageID       *uint                `json:"page_id,omitempty" gorm:"index"`  // filter-only reference
	CreatedAt    time.Time            `json:"created_at" gorm:"index"`
}

// CreateNotificationRequest is the boundary shape used by triggering
// domain events to create a notification.
type CreateNotificationRequest struct {
	RecipientID  uint                 `json:"recipient_id" validate:"required"`
	Type         NotificationType     `json:"type" validate:"required"`
	SenderID     *uint                `json:"sender_id,omitempty"`
	Content      *string              `json:"content,omitempty"`
	Priority     NotificationPriority `json:"priority,omitempty"`
	IsActionable bool                 `json:"is_actionable,omitempty"`
	ActionLabel  string               `json:"action_label,omitempty"`
	ActionURL    string               `json:"action_url,omitempty"`
	ImageURL     string               `json:"image_url,omitempty"`
	URL          string               `json:"url,omitempty"`
	GroupID      *uint                `json:"group_id,omitempty"`
	PageID       *uint                `json:"page_id,omitempty"`
}
