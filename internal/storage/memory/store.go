package memory

import (
	"context" // standard Go package for request-scoped context (timeouts, cancellation)
	"sync"    // standard Go package for concurrency primitives like Mutex

	interfaces "github.com/sheikh-saqib/client-ledger-engine/internal/interfaces" // interface LedgerStore
	"github.com/sheikh-saqib/client-ledger-engine/internal/models"                // domain models: LedgerEntry, Account
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// It keeps the journal in a slice and the account snapshots in a map, and is
// safe for concurrent writes.
type MemoryLedgerStore struct {
	mu       sync.Mutex                // protects entries and accounts
	entries  []models.LedgerEntry      // journal, in the order entries were saved
	accounts map[uint16]models.Account // latest snapshot per client
}

// NewMemoryLedgerStore creates and returns a new MemoryLedgerStore instance
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		entries:  make([]models.LedgerEntry, 0),
		accounts: make(map[uint16]models.Account),
	}
}

// SaveEntry appends a LedgerEntry to the journal.
func (m *MemoryLedgerStore) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	return nil // always succeeds in memory
}

// GetLedgerEntries returns a copy of the whole journal.
func (m *MemoryLedgerStore) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]models.LedgerEntry, len(m.entries))
	copy(copied, m.entries) // callers can't modify internal state through the copy
	return copied, nil
}

func (m *MemoryLedgerStore) GetEntriesByClient(ctx context.Context, clientID uint16) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.LedgerEntry

	for _, e := range m.entries {
		if e.ClientID == clientID {
			result = append(result, e)
		}
	}
	return result, nil
}

// SaveAccounts stores the snapshots, replacing any earlier snapshot of the same client.
func (m *MemoryLedgerStore) SaveAccounts(ctx context.Context, accounts []models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range accounts {
		m.accounts[a.ClientID] = a
	}
	return nil
}

func (m *MemoryLedgerStore) GetAccounts(ctx context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		result = append(result, a)
	}
	return result, nil
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
