package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Pratham266/cassure-go/internal/models"
)

// CSVWriter writes exported transactions in CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// Write renders rows to out, oldest first as supplied.
func (w *CSVWriter) Write(out io.Writer, rows []models.TransactionRow) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if err := writer.Write([]string{"Date", "Description", "Type", "Amount", "Balance"}); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, row := range rows {
		date := ""
		if row.Date != nil {
			date = row.Date.Format("2006-01-02")
		}
		record := []string{
			date,
			row.Description,
			row.Type,
			formatAmount(row.Amount),
			formatAmount(row.Balance),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
