package notifications

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
	collection := db.Collection("notifications")

	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// ListByUser returns the user's notifications, newest first
func (r *Repository) ListByUser(ctx context.Context, userID primitive.ObjectID, p *pagination.Pagination) ([]Notification, int64, error) {
	filter := bson.M{"userId": userID}

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

	notifications := []Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead flags one of the user's notifications as read
func (r *Repository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
