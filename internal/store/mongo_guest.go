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

type mongoGuestScanStore struct {
	col *mongo.Collection
}

func (s *mongoGuestScanStore) Get(ctx context.Context, address string) (*model.GuestScanCache, error) {
	var g model.GuestScanCache
	err := s.col.FindOne(ctx, bson.M{"wallet_address": address}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &g, err
}

func (s *mongoGuestScanStore) Upsert(ctx context.Context, entry *model.GuestScanCache) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.LastScannedAt = time.Now()
	_, err := s.col.UpdateOne(ctx,
		bson.M{"wallet_address": entry.WalletAddress},
		bson.M{"$set": entry},
		options.Update().SetUpsert(true),
	)
	return err
}
