package interfaces

import (
	"context"

	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
)

// LedgerStore keeps the journal of routed transactions and the final account snapshots.
type LedgerStore interface {
	SaveEntry(ctx context.Context, entry models.LedgerEntry) error
	GetEntriesByClient(ctx context.Context, clientID uint16) ([]models.LedgerEntry, error)
	GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)
	SaveAccounts(ctx context.Context, accounts []models.Account) error
	GetAccounts(ctx context.Context) ([]models.Account, error)
}
