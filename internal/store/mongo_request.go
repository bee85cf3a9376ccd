package store

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRequestStore struct {
	col *mongo.Collection
}

func (s *mongoRequestStore) Create(ctx context.Context, r *model.ApiRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Status = model.RequestPending
	r.CreatedAt = time.Now()
	_, err := s.col.InsertOne(ctx, r)
	return err
}

func (s *mongoRequestStore) Get(ctx context.Context, id string) (*model.ApiRequest, error) {
	var r model.ApiRequest
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &r, err
}

// ClaimNext is the gateway driver's atomic claim (spec.md §4.1 step 2): the
// oldest pending request for provider that is not mid-backoff is stamped
// processing with a fresh processingID in the same find-and-modify, so a
// second driver tick (or a second gateway instance) can never double-dispatch
// it.
func (s *mongoRequestStore) ClaimNext(ctx context.Context, provider model.Provider, processingID string, now time.Time) (*model.ApiRequest, error) {
	filter := bson.M{
		"provider": provider,
		"status":   model.RequestPending,
		"$or": bson.A{
			bson.M{"retry_at": bson.M{"$exists": false}},
			bson.M{"retry_at": nil},
			bson.M{"retry_at": bson.M{"$lte": now}},
		},
	}
	update := bson.M{
		"$set": bson.M{"status": model.RequestProcessing, "processing_id": processingID, "claimed_at": now},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetReturnDocument(options.After)

	var r model.ApiRequest
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *mongoRequestStore) Complete(ctx context.Context, id string, result string, completedAt time.Time) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":       model.RequestCompleted,
		"result":       result,
		"completed_at": completedAt,
	}})
	return err
}

func (s *mongoRequestStore) Fail(ctx context.Context, id string, errMsg string, maxAttempts int, completedAt time.Time) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":       model.RequestFailed,
		"error":        errMsg,
		"completed_at": completedAt,
	}})
	return err
}

func (s *mongoRequestStore) RetryLater(ctx context.Context, id string, errMsg string, retryAt time.Time) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":   model.RequestPending,
		"error":    errMsg,
		"retry_at": retryAt,
	}})
	return err
}

func (s *mongoRequestStore) CountCompletedSince(ctx context.Context, provider model.Provider, since time.Time) (int, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{
		"provider":     provider,
		"status":       model.RequestCompleted,
		"completed_at": bson.M{"$gte": since},
	})
	return int(n), err
}

func (s *mongoRequestStore) CountByStatus(ctx context.Context, provider model.Provider) (map[model.RequestStatus]int, error) {
	cur, err := s.col.Aggregate(ctx, bson.A{
		bson.M{"$match": bson.M{"provider": provider}},
		bson.M{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[model.RequestStatus]int{}
	for cur.Next(ctx) {
		var row struct {
			ID model.RequestStatus `bson:"_id"`
			N  int                 `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.N
	}
	return out, cur.Err()
}

// ReapStale resets requests stuck in processing past leaseCutoff back to
// pending, or to failed once maxAttempts is exhausted (spec.md §9 open
// question: a crashed gateway must not strand its in-flight claims forever).
// The cutoff is compared against claimed_at, the timestamp ClaimNext stamps
// each time it moves a request into processing — not created_at, which is
// set once at Create and would otherwise make a request that sat pending
// past the lease window (expected under the AI provider's capped rate) look
// stale the instant it's claimed, causing a double-dispatch.
func (s *mongoRequestStore) ReapStale(ctx context.Context, leaseCutoff time.Time, maxAttempts int) (int, error) {
	res, err := s.col.UpdateMany(ctx, bson.M{
		"status":     model.RequestProcessing,
		"claimed_at": bson.M{"$lte": leaseCutoff},
		"attempts":   bson.M{"$lt": maxAttempts},
	}, bson.M{
		"$set":   bson.M{"status": model.RequestPending},
		"$unset": bson.M{"processing_id": "", "claimed_at": ""},
	})
	if err != nil {
		return 0, err
	}

	failRes, err := s.col.UpdateMany(ctx, bson.M{
		"status":     model.RequestProcessing,
		"claimed_at": bson.M{"$lte": leaseCutoff},
		"attempts":   bson.M{"$gte": maxAttempts},
	}, bson.M{
		"$set": bson.M{"status": model.RequestFailed, "error": "gateway lease expired", "completed_at": time.Now()},
	})
	if err != nil {
		return int(res.ModifiedCount), err
	}
	return int(res.ModifiedCount + failRes.ModifiedCount), nil
}
