package services

import (
	"testing"

	"github.com/pulsegram/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestTemplatesCoverEveryDeclaredType(t *testing.T) {
	for _, typ := range models.AllNotificationTypes {
		_, ok := Templates[typ]
		require.True(t, ok, "notification type %s has no template", typ)
	}
	require.Len(t, Templates, len(models.AllNotificationTypes))
}

func TestRenderDefaultFollowUsesSenderName(t *testing.T) {
	got := RenderDefault(models.NotificationFollow, "ada")
	require.Equal(t, "ada started following you", got)
}

func TestRenderDefaultUnknownTypeFallsBack(t *testing.T) {
	got := RenderDefault(models.NotificationType("SOMETHING_NEW"), "ada")
	require.Equal(t, GenericFallback, got)
}
