package store

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the go.mongodb.org/mongo-driver backed Store implementation,
// grounded on the teacher's monitor.NewMongoDb helper (monitor_test.go).
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database

	wallets  *mongoWalletStore
	jobs     *mongoJobStore
	requests *mongoRequestStore
	reports  *mongoReportStore
	contracts *mongoContractStore
	guests   *mongoGuestScanStore
	labels   *mongoLabelStore
	tgTokens *mongoTelegramTokenStore
}

// NewMongoStore connects to uri and wires every sub-store against its
// collection, creating the indexes the claim/uniqueness invariants depend
// on.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	db := client.Database("sentinel")
	s := &MongoStore{
		client: client,
		db:     db,
	}
	s.wallets = &mongoWalletStore{col: db.Collection("wallets")}
	s.jobs = &mongoJobStore{col: db.Collection("analysis_jobs")}
	s.requests = &mongoRequestStore{col: db.Collection("api_requests")}
	s.reports = &mongoReportStore{col: db.Collection("reports")}
	s.contracts = &mongoContractStore{col: db.Collection("contract_analyses")}
	s.guests = &mongoGuestScanStore{col: db.Collection("guest_scans")}
	s.labels = &mongoLabelStore{col: db.Collection("address_labels")}
	s.tgTokens = &mongoTelegramTokenStore{col: db.Collection("telegram_link_tokens")}

	if err := s.ensureIndexes(ctx); err != nil {
		log.Warn("mongo index setup failed, continuing without them", "err", err)
	}
	return s, nil
}

func (s *MongoStore) Wallets() WalletStore               { return s.wallets }
func (s *MongoStore) Jobs() JobStore                      { return s.jobs }
func (s *MongoStore) Requests() RequestStore              { return s.requests }
func (s *MongoStore) Reports() ReportStore                { return s.reports }
func (s *MongoStore) Contracts() ContractStore             { return s.contracts }
func (s *MongoStore) GuestScans() GuestScanStore           { return s.guests }
func (s *MongoStore) Labels() LabelStore                  { return s.labels }
func (s *MongoStore) TelegramTokens() TelegramTokenStore  { return s.tgTokens }

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
