package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fol-planner/artifacts"
	"github.com/theoremus-urban-solutions/transit-fol-planner/config"
	"github.com/theoremus-urban-solutions/transit-fol-planner/fol"
	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
	"github.com/theoremus-urban-solutions/transit-fol-planner/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal"
	"github.com/theoremus-urban-solutions/transit-fol-planner/planner"
	"github.com/theoremus-urban-solutions/transit-fol-planner/prover"
	"github.com/theoremus-urban-solutions/transit-fol-planner/server"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens.
func run() int {
	mode := flag.String("mode", "serve", "serve|plan")
	configPath := flag.String("config", "", "path to config.yml (default: config.yml, ./config/config.yml)")
	from := flag.String("from", "", "start stop name or id (plan mode)")
	to := flag.String("to", "", "end stop name or id (plan mode)")
	fewer := flag.Bool("fewer-transfers", true, "prefer fewer transfers over shorter travel time")
	direct := flag.Bool("direct", false, "assert stop-skipping direct routes during verification")
	save := flag.Bool("save", false, "persist engine inputs and transcripts")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger, err := internal.NewLogger(cfg.Server.Environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := wire(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return 1
	}
	defer app.close()

	switch *mode {
	case "serve":
		err = app.serve(ctx, cfg)
	case "plan":
		err = app.plan(ctx, planner.Request{
			From:                 *from,
			To:                   *to,
			PreferFewerTransfers: *fewer,
			SaveInputs:           *save,
			IncludeDirectRoutes:  *direct,
		})
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		logger.Error("exiting", zap.Error(err))
		return 1
	}
	return 0
}

type app struct {
	logger  *zap.Logger
	metrics *internal.Metrics
	feed    *planner.FeedSource
	planner *planner.Planner
	repo    *artifacts.Repository
	catalog *artifacts.Catalog
}

func wire(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*app, error) {
	policy, err := cfg.FarePolicy()
	if err != nil {
		return nil, err
	}
	metrics := internal.NewMetrics("tripplanner")

	files, err := artifacts.NewFileStore(cfg.Artifacts.Dir)
	if err != nil {
		return nil, err
	}
	var catalog *artifacts.Catalog
	if cfg.Artifacts.Catalog != "" {
		catalog, err = artifacts.OpenCatalog(ctx, cfg.Artifacts.Catalog)
		if err != nil {
			return nil, err
		}
	}
	repo := artifacts.NewRepository(files, catalog, logger)

	mace4, prover9 := cfg.Engines()
	orch := prover.NewOrchestrator(mace4, prover9, repo, cfg.OrchestratorOptions(), logger, metrics)

	store := graph.NewStore()
	timeout := time.Duration(cfg.Feed.TimeoutMS) * time.Millisecond
	feed := &planner.FeedSource{
		Path:         cfg.Feed.GTFSPath,
		AlertsURL:    cfg.Feed.ServiceAlertsURL,
		SnapshotPath: cfg.Feed.SnapshotPath,
		Options:      cfg.GTFSOptions(),
		HTTP:         &http.Client{Timeout: timeout},
		Alerts:       gtfsrt.NewClient(timeout),
		Store:        store,
		Logger:       logger,
		Metrics:      metrics,
	}
	if cfg.Feed.StaticURL != "" {
		feed.Path = ""
		feed.URL = cfg.Feed.StaticURL
	}

	encoder := fol.NewEncoder(cfg.Prover.Budget)
	p := planner.New(store, encoder, orch, policy, logger, metrics)
	return &app{logger: logger, metrics: metrics, feed: feed, planner: p, repo: repo, catalog: catalog}, nil
}

func (a *app) close() {
	if a.catalog != nil {
		_ = a.catalog.Close()
	}
}

func (a *app) serve(ctx context.Context, cfg *config.AppConfig) error {
	// the server starts without a graph; /api/health reports 503 until a load succeeds
	if err := a.feed.Load(ctx); err != nil {
		a.logger.Error("initial feed load failed", zap.Error(err))
	}
	if cfg.Feed.Watch {
		go func() {
			if err := a.feed.Watch(ctx); err != nil {
				a.logger.Error("feed watcher stopped", zap.Error(err))
			}
		}()
	}
	srv := server.New(a.planner, a.repo, server.Options{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, a.logger, a.metrics)
	return srv.Run(ctx)
}

func (a *app) plan(ctx context.Context, req planner.Request) error {
	if req.From == "" || req.To == "" {
		return fmt.Errorf("-from and -to are required in plan mode")
	}
	if err := a.feed.Load(ctx); err != nil {
		return err
	}
	res, err := a.planner.Plan(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("no verified route: %s", res.Error)
	}
	return nil
}
