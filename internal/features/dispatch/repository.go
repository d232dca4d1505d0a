package dispatch

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meridharani/dharani-api/internal/features/reports"
	"github.com/meridharani/dharani-api/internal/pkg/pagination"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("assignments")

	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "workerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "reportId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "offerExpiresAt", Value: 1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, a *Assignment) error {
	now := time.Now()
	a.ID = primitive.NewObjectID()
	a.Status = StatusOffered
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, a)
	return err
}

func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Assignment, error) {
	var a Assignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByWorker returns a page of the worker's assignments, newest first
func (r *Repository) ListByWorker(ctx context.Context, workerID primitive.ObjectID, status string, p *pagination.Pagination) ([]Assignment, int64, error) {
	filter := bson.M{"workerId": workerID}
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

	var assignments []Assignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

// Accept moves an unexpired offer to accepted. The status, owner and
// expiry checks are all in the filter; a lost race or an expired offer
// comes back as ErrInvalidTransition.
func (r *Repository) Accept(ctx context.Context, id, workerID primitive.ObjectID) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":            id,
			"workerId":       workerID,
			"status":         StatusOffered,
			"offerExpiresAt": bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{
			"status":     StatusAccepted,
			"acceptedAt": now,
			"updatedAt":  now,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// Expire terminates an offer (decline or timeout)
func (r *Repository) Expire(ctx context.Context, id primitive.ObjectID, reason string) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusOffered},
		bson.M{"$set": bson.M{
			"status":       StatusExpired,
			"expiryReason": reason,
			"updatedAt":    now,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// Complete closes an accepted assignment with its verification evidence
func (r *Repository) Complete(ctx context.Context, id primitive.ObjectID, proof reports.ImageRef, cleanScore float64) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusAccepted},
		bson.M{"$set": bson.M{
			"status":        StatusCompleted,
			"proof":         proof,
			"cleanScore":    cleanScore,
			"completedAt":   now,
			"pendingReview": false,
			"updatedAt":     now,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// SetPendingReview flags an accepted assignment for manual review,
// keeping the status monotonic
func (r *Repository) SetPendingReview(ctx context.Context, id primitive.ObjectID, pending bool, proof *reports.ImageRef, cleanScore *float64) error {
	set := bson.M{
		"pendingReview": pending,
		"updatedAt":     time.Now(),
	}
	if proof != nil {
		set["proof"] = proof
	}
	if cleanScore != nil {
		set["cleanScore"] = cleanScore
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusAccepted},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// ListExpiredOffers returns offers whose expiry has passed, oldest first
func (r *Repository) ListExpiredOffers(ctx context.Context, limit int64) ([]Assignment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "offerExpiresAt", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{
		"status":         StatusOffered,
		"offerExpiresAt": bson.M{"$lt": time.Now()},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []Assignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}
