package store

import (
	"context"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoLabelStore struct {
	col *mongo.Collection
}

func (s *mongoLabelStore) Get(ctx context.Context, address string, chain model.Chain) (*model.AddressLabel, error) {
	var l model.AddressLabel
	err := s.col.FindOne(ctx, bson.M{"address": address, "chain": chain}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &l, err
}

// Insert is first-writer-wins: a duplicate-key error from the unique
// (address, chain) index means another resolver already persisted a label,
// which is fine, so it is swallowed rather than surfaced.
func (s *mongoLabelStore) Insert(ctx context.Context, l *model.AddressLabel) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := s.col.InsertOne(ctx, l)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
