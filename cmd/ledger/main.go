package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sheikh-saqib/client-ledger-engine/internal/config"
	"github.com/sheikh-saqib/client-ledger-engine/internal/csvio"
	"github.com/sheikh-saqib/client-ledger-engine/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/client-ledger-engine/internal/interfaces"
	"github.com/sheikh-saqib/client-ledger-engine/internal/ledger"
	"github.com/sheikh-saqib/client-ledger-engine/internal/logging"
	"github.com/sheikh-saqib/client-ledger-engine/internal/processor"
	"github.com/sheikh-saqib/client-ledger-engine/internal/storage/postgres"
	"go.uber.org/zap"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage")
	fmt.Fprintln(w, "    ledger transactions.csv > accounts.csv")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if len(args) < 1 {
		usage(stderr)
		return 1
	}

	file, err := os.Open(args[0])
	if err != nil {
		logger.Error("cannot open transactions file", zap.Error(err))
		usage(stderr)
		return 1
	}
	defer file.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open PostgreSQL store", zap.Error(err))
		return 1
	}
	defer closeStore()

	opts := []processor.Option{
		processor.WithLogger(logger),
		processor.WithWorkers(cfg.Workers),
	}
	registryOpts := []ledger.Option{ledger.WithLogger(logger)}
	if store != nil {
		opts = append(opts, processor.WithStore(store))
		registryOpts = append(registryOpts, ledger.WithStore(store))
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		opts = append(opts, processor.WithPublisher(publisher))
	}

	registry := ledger.NewRegistry(registryOpts...)
	p := processor.New(registry, opts...)

	if err := p.Run(ctx, csvio.NewReader(file), stdout); err != nil {
		logger.Error("ledger run failed", zap.Error(err))
		return 1
	}
	return 0
}

// openStore connects the journal and snapshot store. Without a DSN there is
// nothing to persist to, so no store is returned and journaling stays off.
func openStore(ctx context.Context, cfg *config.Config) (interfaces.LedgerStore, func(), error) {
	if cfg.PostgresDSN == "" {
		return nil, func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}

	pg := postgres.NewPostgresLedgerStore(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}
