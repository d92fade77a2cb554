package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/pulsegram/backend/internal/models"
)

// Wire event names. These two names are the entire real-time protocol
// surface; READ_NOTIFICATION carries an optional notificationId that
// distinguishes a single read from mark-all.
const (
	WireNewNotification  = "NEW_NOTIFICATION"
	WireReadNotification = "READ_NOTIFICATION"
)

// Event is the closed set of relay messages. Internally the read event
// is split into MarkedOne and MarkedAll so no code path has to branch on
// a missing field; only the wire codec below folds the two back into the
// shared READ_NOTIFICATION name.
type Event interface {
	wireName() string
}

// NewNotification announces a just-persisted notification.
type NewNotification struct {
	Notification models.Notification `json:"notification"`
}

func (NewNotification) wireName() string { return WireNewNotification }

// MarkedOne announces that exactly one notification was read.
type MarkedOne struct {
	NotificationID uint `json:"notificationId"`
}

func (MarkedOne) wireName() string { return WireReadNotification }

// MarkedAll announces that every notification for the user was read.
type MarkedAll struct{}

func (MarkedAll) wireName() string { return WireReadNotification }

// ChannelFor derives the relay channel for a user. One logical channel
// per recipient, shared by all of that user's sessions.
func ChannelFor(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

type wireFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type wireRead struct {
	NotificationID *uint `json:"notificationId,omitempty"`
}

// Encode serializes an event to its wire frame.
func Encode(ev Event) ([]byte, error) {
	var data interface{}
	switch e := ev.(type) {
	case NewNotification:
		data = e
	case MarkedOne:
		id := e.NotificationID
		data = wireRead{NotificationID: &id}
	case MarkedAll:
		data = wireRead{}
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireFrame{Event: ev.wireName(), Data: raw})
}

// Decode parses a wire frame back into a typed event.
func Decode(payload []byte) (Event, error) {
	var frame wireFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil, err
	}

	switch frame.Event {
	case WireNewNotification:
		var ev NewNotification
		if err := json.Unmarshal(frame.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case WireReadNotification:
		var body wireRead
		if err := json.Unmarshal(frame.Data, &body); err != nil {
			return nil, err
		}
		if body.NotificationID != nil {
			return MarkedOne{NotificationID: *body.NotificationID}, nil
		}
		return MarkedAll{}, nil
	default:
		return nil, fmt.Errorf("unknown wire event %q", frame.Event)
	}
}
