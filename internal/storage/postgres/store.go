package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	interfaces "github.com/sheikh-saqib/client-ledger-engine/internal/interfaces" // interface LedgerStore
	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
)

// Schema creates the tables used by PostgresLedgerStore.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	id         UUID PRIMARY KEY,
	client_id  INTEGER NOT NULL,
	tx_id      BIGINT NOT NULL,
	type       TEXT NOT NULL,
	amount     NUMERIC,
	status     TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	available  NUMERIC NOT NULL,
	held       NUMERIC NOT NULL,
	total      NUMERIC NOT NULL,
	locked     BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS ledger_entries_client_idx ON ledger_entries (client_id);
CREATE TABLE IF NOT EXISTS accounts (
	client_id INTEGER PRIMARY KEY,
	available NUMERIC NOT NULL,
	held      NUMERIC NOT NULL,
	total     NUMERIC NOT NULL,
	locked    BOOLEAN NOT NULL
);`

type PostgresLedgerStore struct {
	db *sql.DB
}

// Open connects to dsn through the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, wrap("ping", err)
	}
	return db, nil
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Migrate creates the schema if it does not exist yet.
func (p *PostgresLedgerStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return wrap("migrate", err)
	}
	return nil
}

func (p *PostgresLedgerStore) SaveEntry(ctx context.Context, e models.LedgerEntry) error {
	const query = `INSERT INTO ledger_entries (id, client_id, tx_id, type, amount, status, reason, available, held, total, locked, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := p.db.ExecContext(ctx, query,
		e.ID, e.ClientID, e.TxID, string(e.Type), e.Amount, string(e.Status), e.Reason,
		e.Available, e.Held, e.Total, e.Locked, e.CreatedAt,
	)
	if err != nil {
		return wrap("save entry", err)
	}
	return nil
}

const selectEntries = `SELECT id, client_id, tx_id, type, amount, status, reason, available, held, total, locked, created_at
	FROM ledger_entries`

func (p *PostgresLedgerStore) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, selectEntries+` ORDER BY created_at, id`)
	if err != nil {
		return nil, wrap("get entries", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (p *PostgresLedgerStore) GetEntriesByClient(ctx context.Context, clientID uint16) ([]models.LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, selectEntries+` WHERE client_id = $1 ORDER BY created_at, id`, clientID)
	if err != nil {
		return nil, wrap("get entries by client", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry

	for rows.Next() {
		var (
			entry          models.LedgerEntry
			txType, status string
		)
		err := rows.Scan(
			&entry.ID,
			&entry.ClientID,
			&entry.TxID,
			&txType,
			&entry.Amount,
			&status,
			&entry.Reason,
			&entry.Available,
			&entry.Held,
			&entry.Total,
			&entry.Locked,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entry.Type = models.TransactionType(txType)
		entry.Status = models.EntryStatus(status)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveAccounts upserts every snapshot inside a single database transaction.
func (p *PostgresLedgerStore) SaveAccounts(ctx context.Context, accounts []models.Account) (err error) {
	const query = `INSERT INTO accounts (client_id, available, held, total, locked)
	VALUES ($1,$2,$3,$4,$5)
	ON CONFLICT (client_id) DO UPDATE SET available = EXCLUDED.available, held = EXCLUDED.held,
	total = EXCLUDED.total, locked = EXCLUDED.locked`

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin", err)
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	for _, a := range accounts {
		_, err = dbTx.ExecContext(ctx, query, a.ClientID, a.Available, a.Held, a.Total, a.Locked)
		if err != nil {
			return wrap(fmt.Sprintf("save account %d", a.ClientID), err)
		}
	}

	if err = dbTx.Commit(); err != nil {
		return wrap("commit", err)
	}
	return nil
}

func (p *PostgresLedgerStore) GetAccounts(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT client_id, available, held, total, locked FROM accounts ORDER BY client_id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap("get accounts", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ClientID, &a.Available, &a.Held, &a.Total, &a.Locked); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// wrap adds the operation name and, for server errors, the SQLSTATE code.
func wrap(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("postgres %s: %s (%s): %w", op, pqErr.Message, pqErr.Code, err)
	}
	return fmt.Errorf("postgres %s: %w", op, err)
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
