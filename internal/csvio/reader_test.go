package csvio

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataSpaces = `type,       client,     tx,     amount
deposit,         1,     1,         1.0
deposit,         2,     2,         2.0
deposit,         1,     3,         2.0
withdrawal,      1,     4,         1.5
withdrawal,      2,     5,         3.0
`

const dataNoSpaces = `type,client,tx,amount
deposit,1,1,1.0
deposit,2,2,2.0
deposit,1,3,2.0
withdrawal,1,4,1.5
withdrawal,2,5,3.0
`

func TestReadAllWithAndWithoutSpaces(t *testing.T) {
	for name, data := range map[string]string{"spaces": dataSpaces, "no spaces": dataNoSpaces} {
		t.Run(name, func(t *testing.T) {
			txs, err := NewReader(strings.NewReader(data)).ReadAll()
			require.NoError(t, err)
			require.Len(t, txs, 5)

			first := txs[0]
			assert.Equal(t, models.Deposit, first.Type)
			assert.Equal(t, uint16(1), first.ClientID)
			assert.Equal(t, uint32(1), first.TxID)
			require.True(t, first.Amount.Valid)
			assert.True(t, first.Amount.Decimal.Equal(decimal.RequireFromString("1.0")))

			last := txs[4]
			assert.Equal(t, models.Withdrawal, last.Type)
			assert.Equal(t, uint16(2), last.ClientID)
			assert.True(t, last.Amount.Decimal.Equal(decimal.RequireFromString("3")))
		})
	}
}

func TestReferenceRowsWithoutAmount(t *testing.T) {
	data := "type,client,tx,amount\n" +
		"dispute,1,3,\n" +
		"resolve,1,3\n" +
		" CHARGEBACK , 1 , 3 , \n"

	txs, err := NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, models.Dispute, txs[0].Type)
	assert.Equal(t, models.Resolve, txs[1].Type)
	assert.Equal(t, models.Chargeback, txs[2].Type)
	for _, tx := range txs {
		assert.False(t, tx.Amount.Valid)
		assert.Equal(t, uint32(3), tx.TxID)
	}
}

func TestDepositWithoutAmountIsNotAParseError(t *testing.T) {
	tx, err := NewReader(strings.NewReader("type,client,tx,amount\ndeposit,1,1,\n")).Next()
	require.NoError(t, err)
	assert.Equal(t, models.Deposit, tx.Type)
	assert.False(t, tx.Amount.Valid)
}

func TestHeaderColumnOrder(t *testing.T) {
	data := "client,amount,type,tx\n4,12.3456,Deposit,99\n"

	tx, err := NewReader(strings.NewReader(data)).Next()
	require.NoError(t, err)
	assert.Equal(t, models.Deposit, tx.Type)
	assert.Equal(t, uint16(4), tx.ClientID)
	assert.Equal(t, uint32(99), tx.TxID)
	assert.True(t, tx.Amount.Decimal.Equal(decimal.RequireFromString("12.3456")))
}

func TestHighPrecisionAmountIsKept(t *testing.T) {
	tx, err := NewReader(strings.NewReader("type,client,tx,amount\ndeposit,1,1,0.123456789\n")).Next()
	require.NoError(t, err)
	assert.Equal(t, "0.123456789", tx.Amount.Decimal.String())
}

func TestMalformedRecords(t *testing.T) {
	tests := []struct {
		name  string
		row   string
		field string
	}{
		{"unknown type", "transfer,1,1,1.0", ColumnType},
		{"empty type", ",1,1,1.0", ColumnType},
		{"client out of range", "deposit,65536,1,1.0", ColumnClient},
		{"negative client", "deposit,-1,1,1.0", ColumnClient},
		{"client not a number", "deposit,abc,1,1.0", ColumnClient},
		{"tx out of range", "deposit,1,4294967296,1.0", ColumnTx},
		{"missing tx", "deposit,1", ColumnTx},
		{"amount not a number", "deposit,1,1,ten", ColumnAmount},
		{"exponent amount", "deposit,1,1,1e3", ColumnAmount},
		{"upper case exponent amount", "deposit,1,1,2.5E-2", ColumnAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "type,client,tx,amount\ndeposit,1,1,1.0\n" + tt.row + "\n"
			r := NewReader(strings.NewReader(data))

			_, err := r.Next()
			require.NoError(t, err)

			_, err = r.Next()
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, 3, parseErr.Line)
			assert.Equal(t, tt.field, parseErr.Field)
			assert.Contains(t, err.Error(), "line 3")
		})
	}
}

func TestExponentAmountError(t *testing.T) {
	_, err := NewReader(strings.NewReader("type,client,tx,amount\ndeposit,1,1,1e3\n")).Next()
	assert.ErrorIs(t, err, ErrExponentAmount)
}

func TestHeaderWithByteOrderMark(t *testing.T) {
	tx, err := NewReader(strings.NewReader("\ufefftype,client,tx,amount\ndeposit,1,1,1.0\n")).Next()
	require.NoError(t, err)
	assert.Equal(t, models.Deposit, tx.Type)
	assert.Equal(t, uint16(1), tx.ClientID)
	assert.Equal(t, uint32(1), tx.TxID)
	assert.True(t, tx.Amount.Decimal.Equal(decimal.RequireFromString("1")))
}

func TestMissingHeaderColumn(t *testing.T) {
	_, err := NewReader(strings.NewReader("type,client,amount\ndeposit,1,1.0\n")).Next()

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Line)
	assert.Contains(t, err.Error(), `"tx"`)
}

func TestEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""))

	_, err := r.Next()
	assert.True(t, errors.Is(err, io.EOF))

	txs, err := NewReader(strings.NewReader("type,client,tx,amount\n")).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestReadAllStopsAtFirstError(t *testing.T) {
	data := "type,client,tx,amount\ndeposit,1,1,1.0\nbogus,1,2,1.0\ndeposit,1,3,1.0\n"

	txs, err := NewReader(strings.NewReader(data)).ReadAll()
	require.Error(t, err)
	assert.Nil(t, txs)
}
