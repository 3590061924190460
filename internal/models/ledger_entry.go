package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus tells whether a routed transaction changed the account
type EntryStatus string

const (
	EntryApplied  EntryStatus = "applied"
	EntryRejected EntryStatus = "rejected"
)

// LedgerEntry is the journal record written for every routed transaction.
// The balance fields hold the account state right after the transaction was handled.
type LedgerEntry struct {
	ID        string              // unique identifier
	ClientID  uint16              // which account this entry belongs to
	TxID      uint32              // transaction id from the input
	Type      TransactionType     // instruction kind
	Amount    decimal.NullDecimal // amount carried by the input, if any
	Status    EntryStatus         // applied or rejected
	Reason    string              // rejection reason, empty when applied
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
	CreatedAt time.Time // timestamp
}
