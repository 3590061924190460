package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/client-ledger-engine/internal/interfaces"
	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
	"go.uber.org/zap"
)

// Registry owns one Ledger per client and routes each transaction to it.
// Ledgers are created on first reference and live for the whole run.
type Registry struct {
	ledgers map[uint16]*Ledger // one ledger per client id
	mapMu   sync.Mutex         // protects the ledgers map itself

	store  interfaces.LedgerStore // optional journal, nil disables it
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for rejected and applied transactions.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithStore journals every routed transaction into store.
func WithStore(store interfaces.LedgerStore) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithClock overrides the time source used for journal entries.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry returns an empty registry configured by opts.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		ledgers: make(map[uint16]*Ledger),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) getLedger(clientID uint16) *Ledger {
	r.mapMu.Lock()
	defer r.mapMu.Unlock()

	l, exists := r.ledgers[clientID]
	if !exists {
		r.logger.Debug("adding new client", zap.Uint16("client", clientID))
		l = NewLedger(clientID)
		r.ledgers[clientID] = l
	}
	return l
}

// Route applies tx to its client's ledger, creating the ledger if needed.
//
// Rejected transactions are logged and journaled but are not returned: they
// never stop a run. The only error Route returns comes from the journal store.
func (r *Registry) Route(ctx context.Context, tx models.Transaction) error {
	l := r.getLedger(tx.ClientID)

	applyErr := l.Apply(tx)
	r.logResult(tx, applyErr)

	if r.store == nil {
		return nil
	}

	entry := r.journalEntry(tx, l.Snapshot(), applyErr)
	if err := r.store.SaveEntry(ctx, entry); err != nil {
		return fmt.Errorf("journal client %d tx %d: %w", tx.ClientID, tx.TxID, err)
	}
	return nil
}

func (r *Registry) logResult(tx models.Transaction, err error) {
	fields := []zap.Field{
		zap.String("type", string(tx.Type)),
		zap.Uint16("client", tx.ClientID),
		zap.Uint32("tx", tx.TxID),
	}
	if tx.Amount.Valid {
		fields = append(fields, zap.Stringer("amount", tx.Amount.Decimal))
	}

	switch {
	case err == nil:
		r.logger.Debug("transaction applied", fields...)
	case errors.Is(err, ErrUnknownTransaction):
		r.logger.Warn("referenced transaction not found, input data error?", append(fields, zap.Error(err))...)
	default:
		r.logger.Warn("transaction rejected", append(fields, zap.Error(err))...)
	}
}

func (r *Registry) journalEntry(tx models.Transaction, acct models.Account, applyErr error) models.LedgerEntry {
	entry := models.LedgerEntry{
		ID:        uuid.New().String(),
		ClientID:  tx.ClientID,
		TxID:      tx.TxID,
		Type:      tx.Type,
		Amount:    tx.Amount,
		Status:    models.EntryApplied,
		Available: acct.Available,
		Held:      acct.Held,
		Total:     acct.Total,
		Locked:    acct.Locked,
		CreatedAt: r.now(),
	}
	if applyErr != nil {
		entry.Status = models.EntryRejected
		entry.Reason = applyErr.Error()
		var rejected *ApplyError
		if errors.As(applyErr, &rejected) {
			entry.Reason = rejected.Err.Error()
		}
	}
	return entry
}

// Ledger returns the ledger of clientID, if the client has been seen.
func (r *Registry) Ledger(clientID uint16) (*Ledger, bool) {
	r.mapMu.Lock()
	defer r.mapMu.Unlock()

	l, ok := r.ledgers[clientID]
	return l, ok
}

// Len returns the number of known clients.
func (r *Registry) Len() int {
	r.mapMu.Lock()
	defer r.mapMu.Unlock()

	return len(r.ledgers)
}

// Accounts returns a snapshot of every client's balances in no particular order.
func (r *Registry) Accounts() []models.Account {
	r.mapMu.Lock()
	ledgers := make([]*Ledger, 0, len(r.ledgers))
	for _, l := range r.ledgers {
		ledgers = append(ledgers, l)
	}
	r.mapMu.Unlock()

	accounts := make([]models.Account, 0, len(ledgers))
	for _, l := range ledgers {
		accounts = append(accounts, l.Snapshot())
	}
	return accounts
}
