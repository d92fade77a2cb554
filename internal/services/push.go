package services

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// FCMPushSender delivers push notifications through Firebase Cloud
// Messaging.
type FCMPushSender struct {
	client *messaging.Client
}

func NewFCMPushSender(client *messaging.Client) *FCMPushSender {
	return &FCMPushSender{client: client}
}

func (s *FCMPushSender) SendPush(ctx context.Context, deviceToken, title, body string) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	return err
}
