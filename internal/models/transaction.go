package models

import (
	"encoding/json"
	"time"
)

// Txn is a single transaction as carried on the feed. The upstream parse
// service attaches whatever fields it extracted, so the field set is open:
// keys the pipeline does not interpret must survive round-trips untouched.
type Txn map[string]any

// Transaction types as reported by the parse service.
const (
	TypeDebit  = "DEBIT"
	TypeCredit = "CREDIT"
)

// Str returns the value under key when it is a string.
func (t Txn) Str(key string) (string, bool) {
	v, ok := t[key].(string)
	return v, ok
}

// Num returns the value under key when it is numeric. JSON decoding yields
// float64, but int is accepted too so literal fixtures behave the same.
func (t Txn) Num(key string) (float64, bool) {
	switch v := t[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// NumOr returns the numeric value under key, or fallback when the field is
// absent or not numeric.
func (t Txn) NumOr(key string, fallback float64) float64 {
	if v, ok := t.Num(key); ok {
		return v
	}
	return fallback
}

// TransactionRow is a persisted transaction, one row in the transactions
// table. Date is nil when the feed value never normalized to a real date.
type TransactionRow struct {
	ID          string     `json:"id"`
	StatementID string     `json:"statementId"`
	UserID      string     `json:"userId"`
	Date        *time.Time `json:"date"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Amount      float64    `json:"amount"`
	Balance     float64    `json:"balance"`
	Raw         Txn        `json:"raw,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
