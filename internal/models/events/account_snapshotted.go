package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
	"github.com/shopspring/decimal"
)

// AccountSnapshotted carries one client's final balances after a run.
type AccountSnapshotted struct {
	EventID    string          `json:"event_id"`
	ClientID   uint16          `json:"client_id"`
	Available  decimal.Decimal `json:"available"`
	Held       decimal.Decimal `json:"held"`
	Total      decimal.Decimal `json:"total"`
	Locked     bool            `json:"locked"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewAccountSnapshotted wraps an account view into an event with a fresh id.
func NewAccountSnapshotted(a models.Account, at time.Time) AccountSnapshotted {
	return AccountSnapshotted{
		EventID:    uuid.New().String(),
		ClientID:   a.ClientID,
		Available:  a.Available,
		Held:       a.Held,
		Total:      a.Total,
		Locked:     a.Locked,
		OccurredAt: at,
	}
}
