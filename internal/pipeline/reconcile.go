package pipeline

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Pratham266/cassure-go/internal/models"
)

// DefaultTolerance is the absolute reconciliation tolerance applied when the
// caller does not configure one. It absorbs floating rounding noise, not
// real discrepancies.
const DefaultTolerance = 0.1

// Reconcile verifies that the first transaction's balance plus the signed
// amounts of every later transaction reproduces the last transaction's
// balance. The opening balance is anchored at txns[0].balance even though
// that value is semantically the balance after the first transaction; the
// downstream accuracy contract depends on exactly this convention, so it is
// preserved rather than corrected. txns must be non-empty; non-numeric
// balances and amounts count as zero.
func Reconcile(txns []models.Txn, tolerance float64) models.AccuracyResult {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	opening := txns[0].NumOr("balance", 0)
	closing := txns[len(txns)-1].NumOr("balance", 0)

	running := opening
	for _, txn := range txns[1:] {
		running += txn.NumOr("amount", 0)
	}

	calculated, _ := decimal.NewFromFloat(running).Round(2).Float64()

	return models.AccuracyResult{
		OpeningBalance:           opening,
		ClosingBalance:           closing,
		CalculatedClosingBalance: calculated,
		IsAccurate:               math.Abs(calculated-closing) < tolerance,
	}
}
