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

type mongoReportStore struct {
	col *mongo.Collection
}

func (s *mongoReportStore) Get(ctx context.Context, walletID string) (*model.Report, error) {
	var r model.Report
	err := s.col.FindOne(ctx, bson.M{"wallet_id": walletID}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &r, err
}

// UpsertSection $sets exactly details.<section> in one FindOneAndUpdate —
// never the whole details sub-document. The four post-fetch analyzers run
// as independent concurrent workers against the same report (spec.md §5:
// "each analyzer owns that state slot — no cross-worker contention"); a
// FindOne followed by a whole-details $set would let one analyzer's write
// clobber another's section that landed in between. ReturnDocument(After)
// hands back the document as every analyzer's writes have left it, so
// callers that need the full details (the risk scorer) see every section
// already written by the time they run.
func (s *mongoReportStore) UpsertSection(ctx context.Context, walletID string, section model.Section, value interface{}) (*model.Report, error) {
	var r model.Report
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"wallet_id": walletID},
		bson.M{
			"$set":         bson.M{"details." + string(section): value, "updated_at": time.Now()},
			"$setOnInsert": bson.M{"_id": uuid.NewString(), "wallet_id": walletID},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *mongoReportStore) SetScore(ctx context.Context, walletID string, score int, summary string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"wallet_id": walletID}, bson.M{"$set": bson.M{
		"risk_score": score,
		"summary":    summary,
		"updated_at": time.Now(),
	}}, options.Update().SetUpsert(true))
	return err
}
