package reports

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meridharani/dharani-api/internal/pkg/pagination"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("reports")

	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trackingId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "reporterId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, report *Report) error {
	now := time.Now()
	report.ID = primitive.NewObjectID()
	report.Status = StatusPending
	report.CreatedAt = now
	report.UpdatedAt = now
	report.Timeline = []TimelineStep{{
		Step:    StatusPending,
		Message: "Report received",
		At:      now,
	}}

	_, err := r.collection.InsertOne(ctx, report)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	var report Report
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *Repository) GetByTrackingID(ctx context.Context, trackingID string) (*Report, error) {
	var report Report
	err := r.collection.FindOne(ctx, bson.M{"trackingId": trackingID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// ListByReporter returns a page of the citizen's reports, newest first
func (r *Repository) ListByReporter(ctx context.Context, reporterID primitive.ObjectID, status string, p *pagination.Pagination) ([]Report, int64, error) {
	filter := bson.M{"reporterId": reporterID}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reports []Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Transition moves a report from one status to another. The expected
// current status sits in the update filter, so a concurrent transition
// loses the race cleanly instead of overwriting.
func (r *Repository) Transition(ctx context.Context, id primitive.ObjectID, from, to, reason, message string) error {
	if !CanTransition(from, to) {
		return apperr.ErrInvalidTransition
	}

	now := time.Now()
	set := bson.M{
		"status":    to,
		"updatedAt": now,
	}
	if reason != "" {
		set["statusReason"] = reason
	}
	if to == StatusResolved {
		set["resolvedAt"] = now
	}

	update := bson.M{
		"$set":  set,
		"$push": bson.M{"timeline": TimelineStep{Step: to, Message: message, At: now}},
	}
	if to == StatusPending {
		// reset path: clear the rejection reason
		update["$unset"] = bson.M{"statusReason": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// SetClassification records the category and moves pending -> classified
func (r *Repository) SetClassification(ctx context.Context, id primitive.ObjectID, category string, confidence float64) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{
			"$set": bson.M{
				"status":     StatusClassified,
				"category":   category,
				"confidence": confidence,
				"updatedAt":  now,
			},
			"$inc":  bson.M{"classifyAttempts": 1},
			"$push": bson.M{"timeline": TimelineStep{Step: StatusClassified, Message: "Identified as " + category, At: now}},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// IncrementClassifyAttempts bumps the counter without a status change,
// used when classification fails before the report is rejected
func (r *Repository) IncrementClassifyAttempts(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"classifyAttempts": 1}},
	)
	return err
}

// ListByStatus returns reports stuck in a status longer than olderThan,
// oldest first. The scheduler uses this to sweep work the live pipeline
// dropped.
func (r *Repository) ListByStatus(ctx context.Context, status string, olderThan time.Duration, limit int64) ([]Report, error) {
	filter := bson.M{
		"status":    status,
		"updatedAt": bson.M{"$lt": time.Now().Add(-olderThan)},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
