package notifications

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/pkg/logger"
	"github.com/meridharani/dharani-api/internal/pkg/push"
)

// Service records in-app notifications and mirrors them to FCM. Push
// delivery is best-effort: a missing token or a send failure never
// affects the caller.
type Service struct {
	repo  *Repository
	users *auth.Repository
	push  *push.Service
}

func NewService(repo *Repository, users *auth.Repository, pushSvc *push.Service) *Service {
	return &Service{repo: repo, users: users, push: pushSvc}
}

// Notify stores the notification and fires a push copy
func (s *Service) Notify(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]string) {
	if err := s.repo.Create(ctx, &Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Data:   data,
	}); err != nil {
		logger.Error("store notification for user %s: %v", userID.Hex(), err)
	}

	if s.push == nil {
		return
	}
	token, err := s.users.DeviceToken(ctx, userID)
	if err != nil || token == "" {
		return
	}
	s.push.Send(token, title, body, data)
}
