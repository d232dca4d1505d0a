package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meridharani/dharani-api/pkg/apperr"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("users")

	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, user *User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrDuplicate
		}
		return err
	}

	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrBadRequest
	}

	var user User
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateLocation(ctx context.Context, id string, loc Location) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrBadRequest
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"location": loc, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateDeviceToken(ctx context.Context, id, deviceToken string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrBadRequest
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"deviceToken": deviceToken, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeviceToken returns the push token for a user, empty when unset
func (r *Repository) DeviceToken(ctx context.Context, id primitive.ObjectID) (string, error) {
	var doc struct {
		DeviceToken string `bson:"deviceToken"`
	}
	err := r.collection.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"deviceToken": 1})).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", err
	}
	return doc.DeviceToken, nil
}
