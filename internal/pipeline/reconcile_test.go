package pipeline

import (
	"testing"

	"github.com/Pratham266/cassure-go/internal/models"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name            string
		txns            []models.Txn
		tolerance       float64
		wantOpening     float64
		wantClosing     float64
		wantCalculated  float64
		wantAccurate    bool
	}{
		{
			name: "balanced statement",
			txns: []models.Txn{
				{"balance": 1000.0},
				{"amount": -200.0, "balance": 800.0},
				{"amount": 50.0, "balance": 850.0},
			},
			wantOpening:    1000,
			wantClosing:    850,
			wantCalculated: 850,
			wantAccurate:   true,
		},
		{
			name: "closing balance off by fifty",
			txns: []models.Txn{
				{"balance": 1000.0},
				{"amount": -200.0, "balance": 800.0},
				{"amount": 50.0, "balance": 900.0},
			},
			wantOpening:    1000,
			wantClosing:    900,
			wantCalculated: 850,
			wantAccurate:   false,
		},
		{
			name: "rounding noise inside tolerance",
			txns: []models.Txn{
				{"balance": 0.1},
				{"amount": 0.2, "balance": 0.3},
			},
			wantOpening:    0.1,
			wantClosing:    0.3,
			wantCalculated: 0.3,
			wantAccurate:   true,
		},
		{
			name: "non-numeric fields count as zero",
			txns: []models.Txn{
				{"balance": "unreadable"},
				{"amount": "n/a", "balance": 120.0},
				{"amount": 120.0, "balance": 120.0},
			},
			wantOpening:    0,
			wantClosing:    120,
			wantCalculated: 120,
			wantAccurate:   true,
		},
		{
			name: "single transaction reconciles against itself",
			txns: []models.Txn{
				{"amount": -500.0, "balance": 2500.0},
			},
			wantOpening:    2500,
			wantClosing:    2500,
			wantCalculated: 2500,
			wantAccurate:   true,
		},
		{
			name: "tighter tolerance flips verdict",
			txns: []models.Txn{
				{"balance": 100.0},
				{"amount": 10.0, "balance": 110.05},
			},
			tolerance:      0.01,
			wantOpening:    100,
			wantClosing:    110.05,
			wantCalculated: 110,
			wantAccurate:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.txns, tt.tolerance)
			if got.OpeningBalance != tt.wantOpening {
				t.Errorf("opening = %v, want %v", got.OpeningBalance, tt.wantOpening)
			}
			if got.ClosingBalance != tt.wantClosing {
				t.Errorf("closing = %v, want %v", got.ClosingBalance, tt.wantClosing)
			}
			if got.CalculatedClosingBalance != tt.wantCalculated {
				t.Errorf("calculated = %v, want %v", got.CalculatedClosingBalance, tt.wantCalculated)
			}
			if got.IsAccurate != tt.wantAccurate {
				t.Errorf("accurate = %v, want %v", got.IsAccurate, tt.wantAccurate)
			}
		})
	}
}

// The opening balance is anchored at the first transaction's balance, not a
// derived pre-statement value. Only amounts from index 1 on are summed.
func TestReconcileSkipsFirstAmount(t *testing.T) {
	txns := []models.Txn{
		{"amount": -9999.0, "balance": 1000.0},
		{"amount": 100.0, "balance": 1100.0},
	}
	got := Reconcile(txns, 0)
	if got.CalculatedClosingBalance != 1100 {
		t.Errorf("calculated = %v, want 1100 (first amount must not be summed)", got.CalculatedClosingBalance)
	}
	if !got.IsAccurate {
		t.Error("expected accurate verdict")
	}
}
