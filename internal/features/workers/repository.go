package workers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

// Repository reads and mutates worker state stored on user documents
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("users")

	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "workerProfile.available", Value: 1}}},
	})

	return &Repository{collection: collection}
}

// ListAvailable returns all workers that are available and under their
// concurrency cap, in registration order. The cap filter is re-checked
// atomically at reservation time; this list is only the scoring snapshot.
func (r *Repository) ListAvailable(ctx context.Context) ([]Candidate, error) {
	filter := bson.M{
		"role":                     auth.RoleWorker,
		"workerProfile.available":  true,
		"$expr":                    bson.M{"$lt": bson.A{"$workerProfile.activeAssignments", "$workerProfile.maxConcurrent"}},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{
			"fullName":  1,
			"location":  1,
			"createdAt": 1,
			"workerProfile.reputation":        1,
			"workerProfile.activeAssignments": 1,
			"workerProfile.maxConcurrent":     1,
		})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID        primitive.ObjectID `bson:"_id"`
		FullName  string             `bson:"fullName"`
		Location  auth.Location      `bson:"location"`
		CreatedAt primitive.DateTime `bson:"createdAt"`
		Worker    auth.WorkerProfile `bson:"workerProfile"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(docs))
	for _, d := range docs {
		candidates = append(candidates, Candidate{
			ID:                d.ID,
			FullName:          d.FullName,
			Location:          d.Location,
			Reputation:        d.Worker.Reputation,
			ActiveAssignments: d.Worker.ActiveAssignments,
			MaxConcurrent:     d.Worker.MaxConcurrent,
			RegisteredAt:      d.CreatedAt.Time(),
		})
	}
	return candidates, nil
}

// ReserveSlot atomically claims one assignment slot. The availability and
// cap checks live in the update filter, so two concurrent dispatches can
// never push a worker past maxConcurrent.
func (r *Repository) ReserveSlot(ctx context.Context, workerID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":                     workerID,
			"role":                    auth.RoleWorker,
			"workerProfile.available": true,
			"$expr":                   bson.M{"$lt": bson.A{"$workerProfile.activeAssignments", "$workerProfile.maxConcurrent"}},
		},
		bson.M{"$inc": bson.M{"workerProfile.activeAssignments": 1}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// ReleaseSlot frees a slot claimed by ReserveSlot (declined/expired offers)
func (r *Repository) ReleaseSlot(ctx context.Context, workerID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":  workerID,
			"role": auth.RoleWorker,
			"workerProfile.activeAssignments": bson.M{"$gt": 0},
		},
		bson.M{"$inc": bson.M{"workerProfile.activeAssignments": -1}},
	)
	return err
}

// RecordCompletion frees the slot and counts the finished job
func (r *Repository) RecordCompletion(ctx context.Context, workerID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":  workerID,
			"role": auth.RoleWorker,
			"workerProfile.activeAssignments": bson.M{"$gt": 0},
		},
		bson.M{"$inc": bson.M{
			"workerProfile.activeAssignments": -1,
			"workerProfile.jobsCompleted":     1,
		}},
	)
	return err
}

// AdjustReputation shifts a worker's reputation by delta, clamped to [0,5]
func (r *Repository) AdjustReputation(ctx context.Context, workerID primitive.ObjectID, delta float64) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"workerProfile.reputation": bson.M{
				"$min": bson.A{5.0, bson.M{
					"$max": bson.A{0.0, bson.M{
						"$add": bson.A{"$workerProfile.reputation", delta},
					}},
				}},
			},
		}}},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": workerID, "role": auth.RoleWorker},
		pipeline,
	)
	return err
}

// SetAvailability flips the worker's dispatchability flag
func (r *Repository) SetAvailability(ctx context.Context, workerID string, available bool) error {
	objectID, err := primitive.ObjectIDFromHex(workerID)
	if err != nil {
		return apperr.ErrBadRequest
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "role": auth.RoleWorker},
		bson.M{"$set": bson.M{"workerProfile.available": available}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// GetProfile loads the worker profile for stats display
func (r *Repository) GetProfile(ctx context.Context, workerID string) (*auth.WorkerProfile, error) {
	objectID, err := primitive.ObjectIDFromHex(workerID)
	if err != nil {
		return nil, apperr.ErrBadRequest
	}

	var doc struct {
		Worker *auth.WorkerProfile `bson:"workerProfile"`
	}
	err = r.collection.FindOne(ctx,
		bson.M{"_id": objectID, "role": auth.RoleWorker},
		options.FindOne().SetProjection(bson.M{"workerProfile": 1}),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if doc.Worker == nil {
		return nil, apperr.ErrNotFound
	}
	return doc.Worker, nil
}
