package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Pratham266/cassure-go/internal/models"
)

// CanonicalDateLayout is the output date format for every normalized
// transaction and the only format the order resolver reads back.
const CanonicalDateLayout = "02-01-2006"

// dateLayouts is the ordered list of accepted input formats. Order is load
// bearing for ambiguous values: "01-02-2024" parses as 1 February because
// day-month-year is tried before month-day-year. Do not reorder without
// updating the tests that pin this list.
var dateLayouts = []string{
	"02-01-2006", // DD-MM-YYYY (canonical; first so normalization is idempotent)
	"2006-01-02", // YYYY-MM-DD
	"01-02-2006", // MM-DD-YYYY
	"02/01/2006", // DD/MM/YYYY
	"02/01/06",   // DD/MM/YY
	"02-01-06",   // DD-MM-YY
	"2-1-2006",   // D-M-YYYY
	"2-1-06",     // D-M-YY
	"2/1/2006",   // D/M/YYYY
	"2/1/06",     // D/M/YY
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"02 Jan 06",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
}

// Normalize rewrites date, amount and balance into their canonical
// representations, in place. It is total and idempotent: anything that does
// not parse is left exactly as received, and a second pass over already
// normalized fields is a no-op.
func Normalize(txn models.Txn) models.Txn {
	if raw, ok := txn.Str("date"); ok {
		if t, ok := ParseDate(raw); ok {
			txn["date"] = t.Format(CanonicalDateLayout)
		}
	}

	if v, present := txn["amount"]; present && v != nil {
		if amount, ok := parseNumeric(v); ok {
			txnType, _ := txn.Str("type")
			switch txnType {
			case models.TypeDebit:
				amount = -math.Abs(amount)
			case models.TypeCredit:
				amount = math.Abs(amount)
			}
			txn["amount"] = amount
		}
	}

	if v, present := txn["balance"]; present && v != nil {
		// Balances are account positions, not directional amounts: parsed
		// but never sign-forced.
		if balance, ok := parseNumeric(v); ok {
			txn["balance"] = balance
		}
	}

	return txn
}

// ParseDate tries each known layout in order and returns the first valid
// calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric accepts numbers as-is and parses strings after stripping
// thousands separators. "1,000" and 1000.0 both come back as 1000.
func parseNumeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
