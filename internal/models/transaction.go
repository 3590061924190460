package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of instruction carried by a Transaction
type TransactionType string

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
	Dispute    TransactionType = "dispute"
	Resolve    TransactionType = "resolve"
	Chargeback TransactionType = "chargeback"
)

// ParseTransactionType maps the input spelling of a type onto a TransactionType.
// Matching ignores case and surrounding whitespace.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case Deposit, Withdrawal, Dispute, Resolve, Chargeback:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction represents a single instruction against one client's account.
// Amount is only meaningful for deposits and withdrawals; dispute, resolve and
// chargeback reference an earlier transaction through TxID.
type Transaction struct {
	Type     TransactionType
	ClientID uint16
	TxID     uint32
	Amount   decimal.NullDecimal
}

// NewTransaction builds a Transaction carrying an amount.
func NewTransaction(t TransactionType, clientID uint16, txID uint32, amount decimal.Decimal) Transaction {
	return Transaction{
		Type:     t,
		ClientID: clientID,
		TxID:     txID,
		Amount:   decimal.NewNullDecimal(amount),
	}
}

// NewReference builds a Transaction that points at an earlier TxID and has no amount.
func NewReference(t TransactionType, clientID uint16, txID uint32) Transaction {
	return Transaction{Type: t, ClientID: clientID, TxID: txID}
}
