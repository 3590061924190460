package csvio

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
)

// Places is the number of fractional digits every balance is rendered with.
const Places = 4

var accountHeader = []string{"client", "available", "held", "total", "locked"}

// WriteAccounts renders one CSV row per account, ordered by client id.
// Balances are rounded to Places digits here and nowhere else.
func WriteAccounts(w io.Writer, accounts []models.Account) error {
	sorted := make([]models.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ClientID < sorted[j].ClientID })

	cw := csv.NewWriter(w)
	if err := cw.Write(accountHeader); err != nil {
		return err
	}
	for _, a := range sorted {
		row := []string{
			strconv.FormatUint(uint64(a.ClientID), 10),
			a.Available.StringFixed(Places),
			a.Held.StringFixed(Places),
			a.Total.StringFixed(Places),
			strconv.FormatBool(a.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
