package ledger

import (
	"sync"

	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
	"github.com/shopspring/decimal"
)

// TxState is the dispute state of a single deposit or withdrawal
type TxState int

const (
	Unsettled TxState = iota
	Disputed
	ChargedBack
)

func (s TxState) String() string {
	switch s {
	case Unsettled:
		return "unsettled"
	case Disputed:
		return "disputed"
	case ChargedBack:
		return "charged_back"
	default:
		return "unknown"
	}
}

// settleable is a recorded deposit or withdrawal that a dispute can reference
type settleable struct {
	amount decimal.Decimal
	state  TxState
}

// Ledger holds the balances of a single client and the amounts of every
// deposit and withdrawal it accepted, so that later disputes can find them.
//
// Balances are exact decimals; nothing is rounded until the account is rendered.
// A ledger is safe for concurrent use, but callers must keep one client's
// transactions in input order.
type Ledger struct {
	mu sync.Mutex

	clientID  uint16
	available decimal.Decimal
	held      decimal.Decimal
	total     decimal.Decimal
	locked    bool

	// never shrinks; charged back transactions stay here in their terminal state
	transactions map[uint32]*settleable
}

// NewLedger creates an empty, unlocked ledger for clientID
func NewLedger(clientID uint16) *Ledger {
	return &Ledger{
		clientID:     clientID,
		transactions: make(map[uint32]*settleable),
	}
}

// ClientID returns the client this ledger belongs to.
func (l *Ledger) ClientID() uint16 {
	return l.clientID
}

// Apply runs one transaction through the ledger. A non-nil error is always an
// *ApplyError and means the balances were not touched.
func (l *Ledger) Apply(tx models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tx.ClientID != l.clientID {
		return reject(tx, ErrClientMismatch)
	}

	switch tx.Type {
	case models.Deposit:
		return l.deposit(tx)
	case models.Withdrawal:
		return l.withdraw(tx)
	case models.Dispute:
		return l.dispute(tx)
	case models.Resolve:
		return l.resolve(tx)
	case models.Chargeback:
		return l.chargeback(tx)
	default:
		return reject(tx, ErrUnknownType)
	}
}

// checkCredit holds the rules shared by deposits and withdrawals
func (l *Ledger) checkCredit(tx models.Transaction) error {
	if l.locked {
		return reject(tx, ErrAccountLocked)
	}
	if !tx.Amount.Valid {
		return reject(tx, ErrMissingAmount)
	}
	if tx.Amount.Decimal.Sign() <= 0 {
		return reject(tx, ErrInvalidAmount)
	}
	if _, exists := l.transactions[tx.TxID]; exists {
		return reject(tx, ErrDuplicateTransaction)
	}
	return nil
}

func (l *Ledger) deposit(tx models.Transaction) error {
	if err := l.checkCredit(tx); err != nil {
		return err
	}

	amount := tx.Amount.Decimal
	l.record(tx.TxID, amount)
	l.available = l.available.Add(amount)
	l.total = l.total.Add(amount)
	return nil
}

func (l *Ledger) withdraw(tx models.Transaction) error {
	if err := l.checkCredit(tx); err != nil {
		return err
	}

	amount := tx.Amount.Decimal
	// a refused withdrawal is not recorded, so it can never be disputed
	if l.available.LessThan(amount) {
		return reject(tx, ErrInsufficientFunds)
	}

	l.record(tx.TxID, amount)
	l.available = l.available.Sub(amount)
	l.total = l.total.Sub(amount)
	return nil
}

// dispute is allowed on locked accounts: past transactions stay disputable.
// The same formula applies to deposits and withdrawals, so disputing a
// withdrawal takes its amount out of available a second time.
func (l *Ledger) dispute(tx models.Transaction) error {
	rec, ok := l.transactions[tx.TxID]
	if !ok {
		return reject(tx, ErrUnknownTransaction)
	}
	if rec.state != Unsettled {
		return reject(tx, ErrNotUnsettled)
	}

	rec.state = Disputed
	l.available = l.available.Sub(rec.amount)
	l.held = l.held.Add(rec.amount)
	return nil
}

func (l *Ledger) resolve(tx models.Transaction) error {
	rec, err := l.disputed(tx)
	if err != nil {
		return err
	}

	rec.state = Unsettled
	l.available = l.available.Add(rec.amount)
	l.held = l.held.Sub(rec.amount)
	return nil
}

func (l *Ledger) chargeback(tx models.Transaction) error {
	rec, err := l.disputed(tx)
	if err != nil {
		return err
	}

	rec.state = ChargedBack
	l.held = l.held.Sub(rec.amount)
	l.total = l.total.Sub(rec.amount)
	l.locked = true
	return nil
}

func (l *Ledger) disputed(tx models.Transaction) (*settleable, error) {
	rec, ok := l.transactions[tx.TxID]
	if !ok {
		return nil, reject(tx, ErrUnknownTransaction)
	}
	if rec.state != Disputed {
		return nil, reject(tx, ErrNotDisputed)
	}
	return rec, nil
}

func (l *Ledger) record(txID uint32, amount decimal.Decimal) {
	l.transactions[txID] = &settleable{amount: amount, state: Unsettled}
}

// Snapshot returns the current balances.
func (l *Ledger) Snapshot() models.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	return models.Account{
		ClientID:  l.clientID,
		Available: l.available,
		Held:      l.held,
		Total:     l.total,
		Locked:    l.locked,
	}
}

// TransactionState reports the dispute state of a recorded deposit or withdrawal.
func (l *Ledger) TransactionState(txID uint32) (TxState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.transactions[txID]
	if !ok {
		return 0, false
	}
	return rec.state, true
}
