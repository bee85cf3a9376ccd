// Command sentinel runs the wallet-security analysis pipeline: the gateway
// driver, its reaper, the scheduler, every analysis worker, and the small
// operator HTTP surface, all from one process. Splitting these across
// multiple processes is safe (every claim is atomic, spec.md §5) but not
// required, so the default build runs them all under one root context.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainsentinel/sentinel/internal/api"
	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/config"
	"github.com/chainsentinel/sentinel/internal/gateway"
	"github.com/chainsentinel/sentinel/internal/gateway/providers"
	"github.com/chainsentinel/sentinel/internal/jobs"
	"github.com/chainsentinel/sentinel/internal/labels"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/notifier"
	"github.com/chainsentinel/sentinel/internal/scheduler"
	"github.com/chainsentinel/sentinel/internal/store"
	"github.com/chainsentinel/sentinel/internal/workers"
	gethlog "github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	etherscanBaseURL = "https://api.etherscan.io/v2/api"
	aiBaseURL        = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
)

func main() {
	app := &cli.App{
		Name:  "sentinel",
		Usage: "continuous wallet security analysis pipeline",
		Flags: config.Flags,
		Action: func(c *cli.Context) error { return runRole(c, "all") },
		Commands: []*cli.Command{
			{Name: "all", Usage: "run the gateway, scheduler and every worker in one process",
				Action: func(c *cli.Context) error { return runRole(c, "all") }},
			{Name: "gateway", Usage: "run only the rate-limited request gateway and its reaper",
				Action: func(c *cli.Context) error { return runRole(c, "gateway") }},
			{Name: "scheduler", Usage: "run only the periodic wallet-scan scheduler",
				Action: func(c *cli.Context) error { return runRole(c, "scheduler") }},
			{Name: "worker", Usage: "run only the analysis task workers",
				Action: func(c *cli.Context) error { return runRole(c, "worker") }},
		},
	}
	if err := app.Run(os.Args); err != nil {
		gethlog.Error("sentinel: fatal", "err", err)
		os.Exit(1)
	}
}

// runRole builds every shared dependency but starts only the goroutines the
// requested role needs, the way cmd/geth's single flag set backs geth, evm
// and clef as separate entrypoints.
func runRole(c *cli.Context, role string) error {
	cfg := config.FromContext(c)
	setupLogging(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.NewMongoStore(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = db.Close(shutdownCtx)
	}()

	gw := gateway.New(db.Requests(), cfg)
	etherscan := providers.NewEtherscan(etherscanBaseURL, cfg.EtherscanAPIKey)
	ai := providers.NewAI(aiBaseURL, cfg.GeminiAPIKey)
	driver := gateway.NewDriver(gw, cfg, etherscan, ai)
	reaper := gateway.NewReaper(db.Requests(), cfg)

	rpcPool := chainadapter.NewRPCPool(cfg.RPCURLs)
	adapter, err := chainadapter.New(gw, rpcPool)
	if err != nil {
		return fmt.Errorf("build chain adapter: %w", err)
	}
	summarizer := chainadapter.NewSummarizer(gw)

	labelSvc := labels.New(db.Labels(), adapter, adapter)

	transport := notifier.NewTelegram(cfg.TelegramBotToken)
	notify := notifier.New(transport, model.SeverityMedium)

	queue := jobs.New(db.Jobs())
	sched := scheduler.New(db.Wallets(), queue, cfg.ScanInterval)

	workerList := []*workers.Worker{
		workers.New("full-scan", model.TaskFullScan, db.Jobs(), cfg.WorkerPollInterval,
			workers.FullScanHandler(db.Wallets(), queue)),
		workers.New("fetch-transactions", model.TaskFetchTransactions, db.Jobs(), cfg.WorkerPollInterval,
			workers.FetchTransactionsHandler(db.Wallets(), adapter, queue, cfg.InitialScanMaxTx)),
		workers.New("analyze-approvals", model.TaskAnalyzeApprovals, db.Jobs(), cfg.WorkerPollInterval,
			workers.AnalyzeApprovalsHandler(db.Wallets(), db.Reports(), adapter, labelSvc, notify)),
		workers.New("analyze-contracts", model.TaskAnalyzeContracts, db.Jobs(), cfg.WorkerPollInterval,
			workers.AnalyzeContractsHandler(db.Wallets(), db.Reports(), adapter, summarizer, labelSvc, notify)),
		workers.New("analyze-activity", model.TaskAnalyzeActivity, db.Jobs(), cfg.WorkerPollInterval,
			workers.AnalyzeActivityHandler(db.Wallets(), db.Reports())),
		workers.New("analyze-lp-stake", model.TaskAnalyzeLPStake, db.Jobs(), cfg.WorkerPollInterval,
			workers.AnalyzeLPStakeHandler(db.Wallets(), db.Reports())),
	}

	var httpServer *http.Server
	switch role {
	case "gateway":
		go driver.Run(ctx)
		go reaper.Run(ctx, cfg.GatewayLeaseTimeout)
	case "scheduler":
		go sched.Run(ctx)
	case "worker":
		for _, w := range workerList {
			go w.Run(ctx)
		}
	default: // "all"
		go driver.Run(ctx)
		go reaper.Run(ctx, cfg.GatewayLeaseTimeout)
		go sched.Run(ctx)
		for _, w := range workerList {
			go w.Run(ctx)
		}
		opServer := api.New(db.Jobs(), db.Requests())
		httpServer = &http.Server{Addr: fmt.Sprintf(":%d", cfg.APIPort), Handler: opServer.Handler()}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				gethlog.Error("operator api: listen failed", "err", err)
			}
		}()
	}

	gethlog.Info("sentinel: running", "role", role, "api_port", cfg.APIPort)
	<-ctx.Done()

	gethlog.Info("sentinel: shutting down")
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}
	return nil
}

// setupLogging mirrors the teacher's cmd/geth log setup: a terminal handler
// by default, or a lumberjack-rotated JSON file sink when SENTINEL_LOG_FILE
// is set.
func setupLogging(cfg *config.Config) {
	if cfg.LogFile == "" {
		gethlog.Root().SetHandler(gethlog.LvlFilterHandler(gethlog.LvlInfo, gethlog.StreamHandler(os.Stderr, gethlog.TerminalFormat(true))))
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	gethlog.Root().SetHandler(gethlog.LvlFilterHandler(gethlog.LvlInfo, gethlog.StreamHandler(rotator, gethlog.JSONFormat())))
}
