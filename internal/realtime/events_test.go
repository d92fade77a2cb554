package realtime

import (
	"encoding/json"
	"testing"

	"github.com/pulsegram/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestChannelFor(t *testing.T) {
	require.Equal(t, "notifications:user:42", ChannelFor(42))
}

func TestEncodeDecodeNewNotification(t *testing.T) {
	content := "welcome aboard"
	original := NewNotification{Notification: models.Notification{
		ID:          9,
		Type:        models.NotificationSystemAnnounce,
		RecipientID: 42,
		Content:     &content,
		Priority:    models.PriorityHigh,
	}}

	payload, err := Encode(original)
	require.NoError(t, err)

	var frame map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &frame))
	require.JSONEq(t, `"NEW_NOTIFICATION"`, string(frame["event"]))

	decoded, err := Decode(payload)
	require.NoError(t, err)
	ev, ok := decoded.(NewNotification)
	require.True(t, ok)
	require.Equal(t, original.Notification.ID, ev.Notification.ID)
	require.Equal(t, original.Notification.Type, ev.Notification.Type)
	require.Equal(t, &content, ev.Notification.Content)
}

// MarkedOne and MarkedAll share the READ_NOTIFICATION wire name; the
// presence of notificationId is what tells them apart.
func TestReadEventsShareWireName(t *testing.T) {
	one, err := Encode(MarkedOne{NotificationID: 7})
	require.NoError(t, err)
	all, err := Encode(MarkedAll{})
	require.NoError(t, err)

	require.Contains(t, string(one), `"READ_NOTIFICATION"`)
	require.Contains(t, string(all), `"READ_NOTIFICATION"`)
	require.Contains(t, string(one), `"notificationId":7`)
	require.NotContains(t, string(all), "notificationId")

	decodedOne, err := Decode(one)
	require.NoError(t, err)
	require.Equal(t, MarkedOne{NotificationID: 7}, decodedOne)

	decodedAll, err := Decode(all)
	require.NoError(t, err)
	require.Equal(t, MarkedAll{}, decodedAll)
}

func TestDecodeRejectsUnknownEvent(t *testing.T) {
	_, err := Decode([]byte(`{"event":"TYPING_INDICATOR","data":{}}`))
	require.Error(t, err)

	_, err = Decode([]byte(`not json`))
	require.Error(t, err)
}
