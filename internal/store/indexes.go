package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates the unique/lookup indexes the data-model invariants
// of spec.md §3 rely on.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	idx := []struct {
		col   *mongo.Collection
		model mongo.IndexModel
	}{
		{s.wallets.col, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "address", Value: 1}, {Key: "chain", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.jobs.col, mongo.IndexModel{Keys: bson.D{{Key: "task_type", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: 1}}}},
		{s.jobs.col, mongo.IndexModel{Keys: bson.D{{Key: "wallet_id", Value: 1}}}},
		{s.requests.col, mongo.IndexModel{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "status", Value: 1}, {Key: "retry_at", Value: 1}, {Key: "created_at", Value: 1}}}},
		{s.requests.col, mongo.IndexModel{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "completed_at", Value: 1}}}},
		{s.requests.col, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "claimed_at", Value: 1}}}},
		{s.reports.col, mongo.IndexModel{Keys: bson.D{{Key: "wallet_id", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.contracts.col, mongo.IndexModel{Keys: bson.D{{Key: "contract_address", Value: 1}, {Key: "chain", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.guests.col, mongo.IndexModel{Keys: bson.D{{Key: "wallet_address", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.labels.col, mongo.IndexModel{Keys: bson.D{{Key: "address", Value: 1}, {Key: "chain", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.tgTokens.col, mongo.IndexModel{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.tgTokens.col, mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(600)}},
	}
	for _, ix := range idx {
		if _, err := ix.col.Indexes().CreateOne(ctx, ix.model); err != nil {
			return err
		}
	}
	return nil
}
