package models

import "github.com/shopspring/decimal"

// Account is a point-in-time view of one client's balances
type Account struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}
