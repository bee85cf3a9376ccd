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

type mongoWalletStore struct {
	col *mongo.Collection
}

func (s *mongoWalletStore) Get(ctx context.Context, id string) (*model.Wallet, error) {
	var w model.Wallet
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &w, err
}

func (s *mongoWalletStore) List(ctx context.Context) ([]*model.Wallet, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*model.Wallet
	for cur.Next(ctx) {
		var w model.Wallet
		if err := cur.Decode(&w); err != nil {
			return nil, err
		}
		out = append(out, &w)
	}
	return out, cur.Err()
}

func (s *mongoWalletStore) Create(ctx context.Context, w *model.Wallet) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	w.CreatedAt = time.Now()
	if w.TransactionCache.Watermark == nil {
		w.TransactionCache.Watermark = map[model.Stream]uint64{}
	}
	_, err := s.col.InsertOne(ctx, w)
	return err
}

func (s *mongoWalletStore) Delete(ctx context.Context, id string) error {
	// Removes only the wallet document. AnalysisJobs and Reports that
	// reference the wallet by id are not deleted, here or anywhere else in
	// the store.
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *mongoWalletStore) AppendTransactions(ctx context.Context, walletID string, stream model.Stream, rows []model.Transaction, newWatermark uint64) error {
	field := streamField(stream)
	// The watermark write is gated server-side by $max so two concurrent
	// fetchers (or a retried fetch) can never move it backwards, keeping the
	// spec.md §3 monotonicity invariant even without a transaction.
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": walletID}, bson.M{
		"$push": bson.M{field: bson.M{"$each": rows}},
		"$max":  bson.M{"transaction_cache.watermark." + string(stream): newWatermark},
	})
	return err
}

func (s *mongoWalletStore) SetLastScanAt(ctx context.Context, walletID string, at time.Time) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": walletID}, bson.M{"$set": bson.M{"last_scan_at": at}})
	return err
}

func (s *mongoWalletStore) UpdateAnalysisState(ctx context.Context, walletID string, approvals *[]string, interactedContracts *[]string) error {
	set := bson.M{}
	if approvals != nil {
		set["last_analysis_state.approvals"] = *approvals
	}
	if interactedContracts != nil {
		set["last_analysis_state.interacted_contracts"] = *interactedContracts
	}
	if len(set) == 0 {
		return nil
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": walletID}, bson.M{"$set": set}, options.Update())
	return err
}

func streamField(s model.Stream) string {
	switch s {
	case model.StreamNormal:
		return "transaction_cache.normal"
	case model.StreamTokenTransfer:
		return "transaction_cache.token_transfer"
	case model.StreamNFTTransfer:
		return "transaction_cache.nft_transfer"
	default:
		return "transaction_cache.normal"
	}
}
