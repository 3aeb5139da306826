package pipeline

import (
	"testing"

	"github.com/Pratham266/cassure-go/internal/models"
)

func datedTxns(dates ...string) []models.Txn {
	txns := make([]models.Txn, len(dates))
	for i, d := range dates {
		txns[i] = models.Txn{"date": d}
	}
	return txns
}

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name         string
		dates        []string
		wantReversed bool
		wantFirst    string
	}{
		{
			name:         "descending order reversed",
			dates:        []string{"10-01-2024", "05-01-2024", "01-01-2024"},
			wantReversed: true,
			wantFirst:    "01-01-2024",
		},
		{
			name:      "ascending order untouched",
			dates:     []string{"01-01-2024", "05-01-2024", "10-01-2024"},
			wantFirst: "01-01-2024",
		},
		{
			name:      "equal endpoints untouched",
			dates:     []string{"05-01-2024", "01-01-2024", "05-01-2024"},
			wantFirst: "05-01-2024",
		},
		{
			name:      "unparseable first endpoint untouched",
			dates:     []string{"garbage", "05-01-2024", "01-01-2024"},
			wantFirst: "garbage",
		},
		{
			name:      "unparseable last endpoint untouched",
			dates:     []string{"10-01-2024", "05-01-2024", "???"},
			wantFirst: "10-01-2024",
		},
		{
			name:      "single entry untouched",
			dates:     []string{"10-01-2024"},
			wantFirst: "10-01-2024",
		},
		{
			// Non-monotonic interiors are not corrected; only the
			// endpoints are consulted.
			name:      "jumbled interior with ascending endpoints",
			dates:     []string{"01-01-2024", "20-01-2024", "10-01-2024"},
			wantFirst: "01-01-2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := datedTxns(tt.dates...)
			reversed := ResolveOrder(txns)
			if reversed != tt.wantReversed {
				t.Errorf("reversed = %v, want %v", reversed, tt.wantReversed)
			}
			if len(txns) > 0 {
				if got, _ := txns[0].Str("date"); got != tt.wantFirst {
					t.Errorf("first date = %q, want %q", got, tt.wantFirst)
				}
			}
		})
	}
}

func TestResolveOrderEmpty(t *testing.T) {
	if ResolveOrder(nil) {
		t.Error("empty sequence must not reverse")
	}
}

func TestResolveOrderFullReversal(t *testing.T) {
	txns := datedTxns("10-01-2024", "05-01-2024", "01-01-2024")
	if !ResolveOrder(txns) {
		t.Fatal("expected reversal")
	}
	want := []string{"01-01-2024", "05-01-2024", "10-01-2024"}
	for i, w := range want {
		if got, _ := txns[i].Str("date"); got != w {
			t.Errorf("txns[%d].date = %q, want %q", i, got, w)
		}
	}
}
