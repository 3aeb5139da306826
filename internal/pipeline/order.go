package pipeline

import (
	"time"

	"github.com/Pratham266/cassure-go/internal/models"
)

// ResolveOrder reverses txns in place when the endpoint dates show the
// statement runs newest-first, and reports whether it did. The check is a
// heuristic over the two endpoints only: both must carry a canonical
// DD-MM-YYYY date and the first must be strictly after the last. Anything
// else, including unparseable endpoints, leaves the order untouched.
func ResolveOrder(txns []models.Txn) bool {
	if len(txns) < 2 {
		return false
	}

	first, ok := endpointDate(txns[0])
	if !ok {
		return false
	}
	last, ok := endpointDate(txns[len(txns)-1])
	if !ok {
		return false
	}
	if !first.After(last) {
		return false
	}

	for i, j := 0, len(txns)-1; i < j; i, j = i+1, j-1 {
		txns[i], txns[j] = txns[j], txns[i]
	}
	return true
}

func endpointDate(txn models.Txn) (time.Time, bool) {
	s, ok := txn.Str("date")
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(CanonicalDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
