package verify

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
	collection := db.Collection("review_queue")

	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "resolved", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "assignmentId", Value: 1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, item *ReviewItem) error {
	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, item)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*ReviewItem, error) {
	var item ReviewItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListPending returns unresolved review items, oldest first
func (r *Repository) ListPending(ctx context.Context, p *pagination.Pagination) ([]ReviewItem, int64, error) {
	filter := bson.M{"resolved": false}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	items := []ReviewItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Resolve closes a review item with the reviewer's decision. The
// resolved guard in the filter makes double-resolution a clean conflict.
func (r *Repository) Resolve(ctx context.Context, id, reviewerID primitive.ObjectID, approve bool) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "resolved": false},
		bson.M{"$set": bson.M{
			"resolved":   true,
			"approved":   approve,
			"resolvedBy": reviewerID,
			"resolvedAt": now,
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
