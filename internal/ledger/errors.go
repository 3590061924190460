package ledger

import (
	"errors"
	"fmt"

	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
)

// Rejection reasons returned by Ledger.Apply. None of them is fatal to a run;
// the ledger is left exactly as it was before the rejected transaction.
var (
	ErrAccountLocked        = errors.New("account is locked")
	ErrMissingAmount        = errors.New("amount is required")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrDuplicateTransaction = errors.New("transaction id already recorded")
	ErrInsufficientFunds    = errors.New("insufficient available funds")
	ErrUnknownTransaction   = errors.New("referenced transaction not found")
	ErrNotUnsettled         = errors.New("transaction is already disputed or charged back")
	ErrNotDisputed          = errors.New("transaction is not under dispute")
	ErrUnknownType          = errors.New("unknown transaction type")
	ErrClientMismatch       = errors.New("transaction belongs to another client")
)

// ApplyError describes a transaction the ledger refused to apply.
type ApplyError struct {
	Type     models.TransactionType
	ClientID uint16
	TxID     uint32
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s client=%d tx=%d: %v", e.Type, e.ClientID, e.TxID, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

func reject(tx models.Transaction, err error) error {
	return &ApplyError{Type: tx.Type, ClientID: tx.ClientID, TxID: tx.TxID, Err: err}
}
