package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sheikh-saqib/client-ledger-engine/internal/models"
	"github.com/shopspring/decimal"
)

// Column names expected in the header row.
const (
	ColumnType   = "type"
	ColumnClient = "client"
	ColumnTx     = "tx"
	ColumnAmount = "amount"
)

// ErrExponentAmount rejects amounts written in scientific notation such as 1e3.
var ErrExponentAmount = errors.New("amount must be a plain decimal")

// ParseError reports a record that could not be turned into a transaction.
// It aborts the run: a malformed input file is not something to skip over.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: field %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader decodes transactions from CSV with a type,client,tx,amount header.
// Whitespace around every field is ignored, the type is matched without
// regard to case, and rows may leave out a trailing empty amount.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
}

func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{csv: cr}
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return io.EOF // empty input holds no transactions
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	r.columns = make(map[string]int, len(header))
	for i, name := range header {
		r.columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColumnType, ColumnClient, ColumnTx} {
		if _, ok := r.columns[required]; !ok {
			return &ParseError{Line: 1, Err: fmt.Errorf("header has no %q column", required)}
		}
	}
	return nil
}

// Next returns the next transaction, or io.EOF once the input is exhausted.
func (r *Reader) Next() (models.Transaction, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return models.Transaction{}, err
		}
	}

	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return models.Transaction{}, io.EOF
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("read transaction: %w", err)
	}
	line, _ := r.csv.FieldPos(0)

	return r.parse(line, record)
}

// ReadAll decodes every remaining transaction.
func (r *Reader) ReadAll() ([]models.Transaction, error) {
	var txs []models.Transaction
	for {
		tx, err := r.Next()
		if errors.Is(err, io.EOF) {
			return txs, nil
		}
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
}

func (r *Reader) field(record []string, column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (r *Reader) parse(line int, record []string) (models.Transaction, error) {
	var tx models.Transaction

	raw := r.field(record, ColumnType)
	t, err := models.ParseTransactionType(raw)
	if err != nil {
		return tx, &ParseError{Line: line, Field: ColumnType, Value: raw, Err: err}
	}
	tx.Type = t

	raw = r.field(record, ColumnClient)
	client, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return tx, &ParseError{Line: line, Field: ColumnClient, Value: raw, Err: err}
	}
	tx.ClientID = uint16(client)

	raw = r.field(record, ColumnTx)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return tx, &ParseError{Line: line, Field: ColumnTx, Value: raw, Err: err}
	}
	tx.TxID = uint32(id)

	// a missing amount is left for the ledger to reject
	raw = r.field(record, ColumnAmount)
	if raw != "" {
		if strings.ContainsAny(raw, "eE") {
			return tx, &ParseError{Line: line, Field: ColumnAmount, Value: raw, Err: ErrExponentAmount}
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return tx, &ParseError{Line: line, Field: ColumnAmount, Value: raw, Err: err}
		}
		tx.Amount = decimal.NewNullDecimal(amount)
	}

	return tx, nil
}
