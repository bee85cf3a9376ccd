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

type mongoContractStore struct {
	col *mongo.Collection
}

func (s *mongoContractStore) Get(ctx context.Context, address string, chain model.Chain) (*model.ContractAnalysis, error) {
	var c model.ContractAnalysis
	err := s.col.FindOne(ctx, bson.M{"contract_address": address, "chain": chain}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &c, err
}

func (s *mongoContractStore) Upsert(ctx context.Context, entry *model.ContractAnalysis) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.LastAnalyzedAt = time.Now()
	_, err := s.col.UpdateOne(ctx,
		bson.M{"contract_address": entry.ContractAddress, "chain": entry.Chain},
		bson.M{"$set": entry},
		options.Update().SetUpsert(true),
	)
	return err
}
