package scores

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/pkg/pagination"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

type Repository struct {
	events *mongo.Collection
	users  *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	events := db.Collection("score_events")

	events.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	return &Repository{
		events: events,
		users:  db.Collection("users"),
	}
}

// AppendEvent writes one ledger entry
func (r *Repository) AppendEvent(ctx context.Context, event *ScoreEvent) error {
	event.ID = primitive.NewObjectID()
	event.CreatedAt = time.Now()

	_, err := r.events.InsertOne(ctx, event)
	return err
}

// RecentEvents returns the user's latest ledger entries, newest first
func (r *Repository) RecentEvents(ctx context.Context, userID primitive.ObjectID, limit int64) ([]ScoreEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.events.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []ScoreEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreditCitizen bumps the citizen's totals and returns the new point
// total so the caller can recompute the level. countReport also
// increments the lifetime report counter.
func (r *Repository) CreditCitizen(ctx context.Context, userID primitive.ObjectID, points int, countReport bool) (int, error) {
	inc := bson.M{"citizenProfile.totalPoints": points}
	if countReport {
		inc["citizenProfile.totalReports"] = 1
	}

	var doc struct {
		Citizen auth.CitizenProfile `bson:"citizenProfile"`
	}
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID, "role": auth.RoleCitizen},
		bson.M{"$inc": inc},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"citizenProfile": 1}),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, apperr.ErrNotFound
		}
		return 0, err
	}
	return doc.Citizen.TotalPoints, nil
}

// SetCitizenLevel records a recomputed gamification level
func (r *Repository) SetCitizenLevel(ctx context.Context, userID primitive.ObjectID, level string) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID, "role": auth.RoleCitizen},
		bson.M{"$set": bson.M{"citizenProfile.level": level}},
	)
	return err
}

// CreditWorker bumps the worker's point total
func (r *Repository) CreditWorker(ctx context.Context, userID primitive.ObjectID, points int) error {
	result, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID, "role": auth.RoleWorker},
		bson.M{"$inc": bson.M{"workerProfile.totalPoints": points}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// MyTotals loads the caller's point total and, for citizens, their level
func (r *Repository) MyTotals(ctx context.Context, userID primitive.ObjectID) (points int, level string, err error) {
	var doc struct {
		Citizen *auth.CitizenProfile `bson:"citizenProfile"`
		Worker  *auth.WorkerProfile  `bson:"workerProfile"`
	}
	err = r.users.FindOne(ctx,
		bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"citizenProfile": 1, "workerProfile": 1}),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, "", apperr.ErrNotFound
		}
		return 0, "", err
	}

	switch {
	case doc.Citizen != nil:
		return doc.Citizen.TotalPoints, doc.Citizen.Level, nil
	case doc.Worker != nil:
		return doc.Worker.TotalPoints, "", nil
	}
	return 0, "", apperr.ErrNotFound
}

// Leaderboard returns citizens ranked by total points
func (r *Repository) Leaderboard(ctx context.Context, p *pagination.Pagination) ([]LeaderboardEntry, int64, error) {
	filter := bson.M{"role": auth.RoleCitizen}

	total, err := r.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "citizenProfile.totalPoints", Value: -1}, {Key: "createdAt", Value: 1}}).
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit)).
		SetProjection(bson.M{"fullName": 1, "citizenProfile": 1})

	cursor, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID       primitive.ObjectID  `bson:"_id"`
		FullName string              `bson:"fullName"`
		Citizen  auth.CitizenProfile `bson:"citizenProfile"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	entries := make([]LeaderboardEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, LeaderboardEntry{
			UserID:      d.ID,
			FullName:    d.FullName,
			TotalPoints: d.Citizen.TotalPoints,
			Level:       d.Citizen.Level,
		})
	}
	return entries, total, nil
}
