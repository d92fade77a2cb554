package services

import "github.com/pulsegram/backend/internal/models"

// GenericFallback is used when a notification type has no template.
const GenericFallback = "You have a new notification"

// Templates maps every notification type to its default display text.
// Used when a notification is persisted without an explicit content
// string. Coverage of the full type enum is asserted by a test, so a new
// type cannot silently fall through to the generic fallback.
var Templates = map[models.NotificationType]func(sender string) string{
	models.NotificationFollow:         func(s string) string { return s + " started following you" },
	models.NotificationUnfollow:       func(s string) string { return s + " unfollowed you" },
	models.NotificationFriendRequest:  func(s string) string { return s + " sent you a friend request" },
	models.NotificationFriendAccepted: func(s string) string { return s + " accepted your friend request" },
	models.NotificationPostLike:       func(s string) string { return s + " liked your post" },
	models.NotificationPostComment:    func(s string) string { return s + " commented on your post" },
	models.NotificationCommentReply:   func(s string) string { return s + " replied to your comment" },
	models.NotificationMention:        func(s string) string { return s + " mentioned you" },
	models.NotificationStoryReaction:  func(s string) string { return s + " reacted to your story" },
	models.NotificationShare:          func(s string) string { return s + " shared your post" },

	models.NotificationGroupInvite:       func(s string) string { return s + " invited you to a group" },
	models.NotificationGroupJoinRequest:  func(s string) string { return s + " requested to join your group" },
	models.NotificationGroupJoinApproved: func(s string) string { return "Your request to join the group was approved" },
	models.NotificationGroupEvent:        func(s string) string { return s + " created an event in your group" },

	models.NotificationPageInvite: func(s string) string { return s + " invited you to follow a page" },
	models.NotificationPageLike:   func(s string) string { return s + " liked your page" },
	models.NotificationPagePost:   func(s string) string { return "A page you follow published a new post" },

	models.NotificationSystemAnnounce: func(s string) string { return "New announcement" },
	models.NotificationAIJobComplete:  func(s string) string { return "Your AI analysis is ready" },
	models.NotificationSecurityAlert:  func(s string) string { return "Security alert on your account" },
}

// RenderDefault resolves display text for a type and sender name.
// Unknown types get the generic fallback.
func RenderDefault(t models.NotificationType, sender string) string {
	if tmpl, ok := Templates[t]; ok {
		return tmpl(sender)
	}
	return GenericFallback
}
