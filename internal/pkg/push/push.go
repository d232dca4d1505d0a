// Package push delivers fire-and-forget FCM notifications. Delivery
// failures are logged and never propagated to callers.
package push

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/meridharani/dharani-api/internal/pkg/logger"
)

type Service struct {
	client *messaging.Client
}

// NewService initializes the Firebase Admin SDK messaging client
func NewService(ctx context.Context, credentialsPath string) (*Service, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
	}

	return &Service{client: client}, nil
}

// Send delivers a push message to a device token without blocking the
// caller. A nil service or empty token is a no-op, so callers don't have to
// care whether push is configured.
func (s *Service) Send(deviceToken, title, body string, data map[string]string) {
	if s == nil || s.client == nil || deviceToken == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		msg := &messaging.Message{
			Token: deviceToken,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}

		if _, err := s.client.Send(ctx, msg); err != nil {
			logger.Warn("push delivery failed: %v", err)
		}
	}()
}
