package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/optmark/config"
	"github.com/alejandrodnm/optmark/internal/adapters/deribit"
	"github.com/alejandrodnm/optmark/internal/adapters/notify"
	"github.com/alejandrodnm/optmark/internal/adapters/storage"
	"github.com/alejandrodnm/optmark/internal/application/reconciler"
	"github.com/alejandrodnm/optmark/internal/domain"
	"github.com/alejandrodnm/optmark/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	currency := flag.String("currency", "", "underlying: BTC|ETH|SOL_USDC|XRP_USDC|BNB_USDC|PAXG_USDC (overrides config)")
	expiryCode := flag.String("expiry-code", "", "option expiry as DDMMMYY, e.g. 27JUN25 (overrides config)")
	t1 := flag.Int("t1", 0, "total run duration in seconds (overrides config)")
	t2 := flag.Int("t2", 0, "seconds between cycles (overrides config)")
	strikes := flag.String("strikes", "", "comma separated strikes, 'd' allowed as decimal point (overrides config)")
	outputFile := flag.String("output-file", "", "CSV results file (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full table per cycle (default: compact 1-line)")
	once := flag.Bool("once", false, "run one cycle, print it and exit without writing results")
	noDB := flag.Bool("no-db", false, "do not record the run in SQLite")
	history := flag.String("history", "", "print the stored cycles of a run id and exit")
	replay := flag.String("replay", "", "print the cycles of a results CSV and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	applyFlags(cfg, flagOverrides{
		currency:   *currency,
		expiryCode: *expiryCode,
		t1:         *t1,
		t2:         *t2,
		strikes:    *strikes,
		outputFile: *outputFile,
	})

	notifier := notify.NewConsole(*table)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *replay != "" {
		runReplay(ctx, *replay, notifier)
		return
	}
	if *history != "" {
		runHistory(ctx, cfg.Storage.DSN, *history, notifier)
		return
	}

	runCfg, err := buildRunConfig(cfg)
	if err != nil {
		slog.Error("invalid run parameters", "err", err, "config_error", domain.IsConfigError(err))
		os.Exit(1)
	}

	slog.Info("optmark starting",
		"config", *configPath,
		"currency", runCfg.Currency,
		"expiry", runCfg.Expiry.Code,
		"strikes", runCfg.Strikes,
		"duration", runCfg.Duration,
		"interval", runCfg.Interval,
		"output", cfg.Run.OutputFile,
		"once", *once,
	)

	client := deribit.NewClient(cfg.API.DeribitBase,
		deribit.WithRateLimit(cfg.API.RatePerSec, cfg.API.Burst),
	)

	if *once {
		runOnce(ctx, runCfg, client, notifier)
		return
	}

	var store ports.Storage
	if !*noDB {
		db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	}

	sink := storage.NewCSVSink(cfg.Run.OutputFile)
	r := reconciler.New(runCfg, client, sink, store, notifier)

	if err := r.Run(ctx); err != nil {
		slog.Error("reconciler exited with error", "err", err, "config_error", domain.IsConfigError(err))
		os.Exit(1)
	}

	slog.Info("optmark stopped cleanly", "run_id", r.RunID(), "output", sink.Path())
}

func runOnce(ctx context.Context, runCfg reconciler.Config, client *deribit.Client, notifier *notify.Console) {
	r := reconciler.New(runCfg, client, nil, nil, nil)
	cycle, err := r.RunOnce(ctx)
	if err != nil {
		slog.Error("cycle failed", "err", err, "config_error", domain.IsConfigError(err))
		os.Exit(1)
	}
	if err := notifier.Notify(ctx, cycle); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func runHistory(ctx context.Context, dsn, runID string, notifier *notify.Console) {
	db, err := storage.NewSQLiteStorage(dsn)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", dsn)
		os.Exit(1)
	}
	defer db.Close()

	cycles, err := db.GetCycles(ctx, runID)
	if err != nil {
		slog.Error("failed to read run", "err", err, "run_id", runID)
		os.Exit(1)
	}
	printCycles(ctx, cycles, notifier)
}

func runReplay(ctx context.Context, path string, notifier *notify.Console) {
	cycles, err := storage.ReadCSV(path)
	if err != nil {
		slog.Error("failed to read results", "err", err, "path", path)
		os.Exit(1)
	}
	printCycles(ctx, cycles, notifier)
}

func printCycles(ctx context.Context, cycles []domain.Cycle, notifier *notify.Console) {
	for _, c := range cycles {
		if err := notifier.Notify(ctx, c); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	slog.Info("cycles printed", "count", len(cycles))
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
