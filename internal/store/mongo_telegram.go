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

type mongoTelegramTokenStore struct {
	col *mongo.Collection
}

func (s *mongoTelegramTokenStore) Create(ctx context.Context, t *model.TelegramLinkToken) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now()
	_, err := s.col.InsertOne(ctx, t)
	return err
}

// Consume atomically marks a token used and returns it, so the same token can
// never be redeemed twice even under concurrent link callbacks.
func (s *mongoTelegramTokenStore) Consume(ctx context.Context, token string, now time.Time) (*model.TelegramLinkToken, error) {
	filter := bson.M{"token": token, "consumed_at": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"consumed_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t model.TelegramLinkToken
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
