package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Pratham266/cassure-go/internal/models"
)

func TestCSVWriter_Write(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	jan16 := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	rows := []models.TransactionRow{
		{Date: &jan15, Description: "CARD PAYMENT TESCO", Type: "DEBIT", Amount: -25.99, Balance: 1234.56},
		{Date: &jan16, Description: "SALARY", Type: "CREDIT", Amount: 2500.00, Balance: 3734.56},
	}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Date,Description,Type,Amount,Balance") {
		t.Error("expected column headers")
	}
	if !strings.Contains(output, "2024-01-15") {
		t.Error("expected first transaction date")
	}
	if !strings.Contains(output, "CARD PAYMENT TESCO") {
		t.Error("expected first transaction description")
	}
	if !strings.Contains(output, "-25.99") {
		t.Error("expected signed first transaction amount")
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 1 header + 2 transactions
	if len(lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(lines))
	}
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	rows := []models.TransactionRow{
		{Description: "PAYMENT", Type: "DEBIT", Amount: -10.00},
	}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.Write(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if strings.Contains(output, "Date,Description") {
		t.Error("should not emit column headers when header=false")
	}
	if !strings.Contains(output, "PAYMENT") {
		t.Error("expected transaction row")
	}
}

func TestCSVWriter_NilDateRendersEmpty(t *testing.T) {
	rows := []models.TransactionRow{
		{Description: "UNDATED", Amount: 5, Balance: 5},
	}

	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.Write(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), ",UNDATED") {
		t.Errorf("expected empty date column, got %q", buf.String())
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{25.99, "25.99"},
		{-25.99, "-25.99"},
		{1234.56, "1234.56"},
		{0, ""},
		{2500.00, "2500.00"},
	}

	for _, tt := range tests {
		got := formatAmount(tt.input)
		if got != tt.expected {
			t.Errorf("formatAmount(%f): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
