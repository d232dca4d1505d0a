package scores

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/pkg/logger"
)

// Service is the scoring ledger: every award appends an event and folds
// the delta into the subject's totals. Citizen levels are recomputed
// from the new total on every credit.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// AwardCitizen credits (or debits) a citizen and recomputes their level
func (s *Service) AwardCitizen(ctx context.Context, userID primitive.ObjectID, points int, reason string, reportID primitive.ObjectID) error {
	if err := s.repo.AppendEvent(ctx, &ScoreEvent{
		UserID:   userID,
		Role:     auth.RoleCitizen,
		Points:   points,
		Reason:   reason,
		ReportID: reportID,
	}); err != nil {
		return err
	}

	total, err := s.repo.CreditCitizen(ctx, userID, points, reason == "report_submitted")
	if err != nil {
		return err
	}

	if err := s.repo.SetCitizenLevel(ctx, userID, auth.LevelForPoints(total)); err != nil {
		logger.Error("recompute level for citizen %s: %v", userID.Hex(), err)
	}
	return nil
}

// AwardWorker credits (or debits) a worker
func (s *Service) AwardWorker(ctx context.Context, userID primitive.ObjectID, points int, reason string, reportID primitive.ObjectID) error {
	if err := s.repo.AppendEvent(ctx, &ScoreEvent{
		UserID:   userID,
		Role:     auth.RoleWorker,
		Points:   points,
		Reason:   reason,
		ReportID: reportID,
	}); err != nil {
		return err
	}
	return s.repo.CreditWorker(ctx, userID, points)
}
