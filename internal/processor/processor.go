// Package processor drives a batch run: it feeds transactions from a source
// into the client registry and hands the final balances to the report writer,
// the snapshot store and the event publisher.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sheikh-saqib/client-ledger-engine/internal/csvio"
	interfaces "github.com/sheikh-saqib/client-ledger-engine/internal/interfaces"
	"github.com/sheikh-saqib/client-ledger-engine/internal/ledger"
	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
	"github.com/sheikh-saqib/client-ledger-engine/internal/models/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shardBuffer = 256

// TransactionSource yields transactions in input order and io.EOF at the end.
type TransactionSource interface {
	Next() (models.Transaction, error)
}

// Processor runs a batch of transactions through a Registry and writes the report.
type Processor struct {
	registry  *ledger.Registry
	store     interfaces.LedgerStore
	publisher interfaces.EventPublisher
	logger    *zap.Logger
	workers   int
	now       func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers spreads clients over n workers. A client's transactions always
// go to the same worker, so their order is kept.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithStore persists the final account snapshots.
func WithStore(store interfaces.LedgerStore) Option {
	return func(p *Processor) {
		p.store = store
	}
}

// WithPublisher publishes one AccountSnapshotted event per client when the run finishes.
func WithPublisher(publisher interfaces.EventPublisher) Option {
	return func(p *Processor) {
		p.publisher = publisher
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

func New(registry *ledger.Registry, opts ...Option) *Processor {
	p := &Processor{
		registry: registry,
		logger:   zap.NewNop(),
		workers:  1,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes src and then writes the final report to w.
func (p *Processor) Run(ctx context.Context, src TransactionSource, w io.Writer) error {
	if err := p.Process(ctx, src); err != nil {
		return err
	}
	return p.Finish(ctx, w)
}

// Process routes every transaction of src. Rejected transactions do not stop
// it; unreadable input and store failures do.
func (p *Processor) Process(ctx context.Context, src TransactionSource) error {
	if p.workers <= 1 {
		return p.processSequential(ctx, src)
	}
	return p.processSharded(ctx, src)
}

func (p *Processor) processSequential(ctx context.Context, src TransactionSource) error {
	var n int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read transactions: %w", err)
		}

		if err := p.registry.Route(ctx, tx); err != nil {
			return err
		}
		n++
	}

	p.logger.Info("transactions processed", zap.Int("count", n), zap.Int("clients", p.registry.Len()))
	return nil
}

func (p *Processor) processSharded(ctx context.Context, src TransactionSource) error {
	g, gctx := errgroup.WithContext(ctx)

	shards := make([]chan models.Transaction, p.workers)
	for i := range shards {
		ch := make(chan models.Transaction, shardBuffer)
		shards[i] = ch

		g.Go(func() error {
			for tx := range ch {
				if err := p.registry.Route(gctx, tx); err != nil {
					return err
				}
			}
			return nil
		})
	}

	var n int
	g.Go(func() error {
		defer func() {
			for _, ch := range shards {
				close(ch)
			}
		}()

		for {
			tx, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read transactions: %w", err)
			}

			select {
			case shards[int(tx.ClientID)%len(shards)] <- tx:
				n++
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	p.logger.Info("transactions processed",
		zap.Int("count", n),
		zap.Int("clients", p.registry.Len()),
		zap.Int("workers", p.workers),
	)
	return nil
}

// Finish writes the account report to w, then saves and publishes the snapshots.
func (p *Processor) Finish(ctx context.Context, w io.Writer) error {
	accounts := p.registry.Accounts()

	if err := csvio.WriteAccounts(w, accounts); err != nil {
		return fmt.Errorf("write accounts: %w", err)
	}

	if p.store != nil {
		if err := p.store.SaveAccounts(ctx, accounts); err != nil {
			return fmt.Errorf("save accounts: %w", err)
		}
		p.logger.Debug("account snapshots saved", zap.Int("accounts", len(accounts)))
	}

	if p.publisher != nil {
		at := p.now()
		for _, a := range accounts {
			key := strconv.FormatUint(uint64(a.ClientID), 10)
			if err := p.publisher.Publish(ctx, key, events.NewAccountSnapshotted(a, at)); err != nil {
				return fmt.Errorf("publish account %d: %w", a.ClientID, err)
			}
		}
		p.logger.Debug("account snapshots published", zap.Int("accounts", len(accounts)))
	}
	return nil
}
