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

type mongoJobStore struct {
	col *mongo.Collection
}

func (s *mongoJobStore) Enqueue(ctx context.Context, job *model.AnalysisJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.Status = model.JobPending
	job.CreatedAt = time.Now()
	_, err := s.col.InsertOne(ctx, job)
	return err
}

// ClaimNext is the atomic find-and-modify spec.md §4.3 demands: one round
// trip picks the oldest pending job of taskType and marks it processing in
// the same server-side operation, so two workers racing on the same queue
// can never both win it.
func (s *mongoJobStore) ClaimNext(ctx context.Context, taskType model.TaskType) (*model.AnalysisJob, error) {
	filter := bson.M{"task_type": taskType, "status": model.JobPending}
	update := bson.M{"$set": bson.M{"status": model.JobProcessing, "processed_at": time.Now()}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetReturnDocument(options.After)

	var job model.AnalysisJob
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *mongoJobStore) Complete(ctx context.Context, jobID string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": jobID}, bson.M{"$set": bson.M{"status": model.JobCompleted}})
	return err
}

func (s *mongoJobStore) Fail(ctx context.Context, jobID string, reason string) error {
	// No auto-retry: a failed job stays failed (spec.md §4.3 failure policy).
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": jobID}, bson.M{
		"$set": bson.M{"status": model.JobFailed, "error": reason},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

func (s *mongoJobStore) CountByStatus(ctx context.Context, taskType model.TaskType) (map[model.JobStatus]int, error) {
	cur, err := s.col.Aggregate(ctx, bson.A{
		bson.M{"$match": bson.M{"task_type": taskType}},
		bson.M{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[model.JobStatus]int{}
	for cur.Next(ctx) {
		var row struct {
			ID model.JobStatus `bson:"_id"`
			N  int             `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.N
	}
	return out, cur.Err()
}

func (s *mongoJobStore) CompletedSince(ctx context.Context, taskType model.TaskType, since time.Time) (int, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{
		"task_type":    taskType,
		"status":       model.JobCompleted,
		"processed_at": bson.M{"$gte": since},
	})
	return int(n), err
}
