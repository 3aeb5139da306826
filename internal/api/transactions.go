package api

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Pratham266/cassure-go/internal/storage"
	"github.com/Pratham266/cassure-go/internal/writer"
)

func (h *Handler) handleListTransactions(c *fiber.Ctx) error {
	if h.Transactions == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Transaction persistence is not configured")
	}

	q := storage.TransactionQuery{
		UserID:      principal(c),
		StatementID: c.Query("statementId"),
		Search:      c.Query("search"),
		SortBy:      c.Query("sortBy", "date"),
		SortOrder:   c.Query("sortOrder", "desc"),
		Page:        c.QueryInt("page", 1),
		Limit:       c.QueryInt("limit", 20),
	}

	var err error
	if q.StartDate, err = queryDate(c, "startDate"); err != nil {
		return fail(c, fiber.StatusBadRequest, "startDate must be YYYY-MM-DD")
	}
	if q.EndDate, err = queryDate(c, "endDate"); err != nil {
		return fail(c, fiber.StatusBadRequest, "endDate must be YYYY-MM-DD")
	}

	rows, total, summary, err := h.Transactions.ListTransactions(c.UserContext(), q)
	if err != nil {
		h.Logger.Error().Err(err).Str("user_id", q.UserID).Msg("failed to list transactions")
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch transactions")
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	totalPages := (total + q.Limit - 1) / q.Limit

	return c.JSON(fiber.Map{
		"success":      true,
		"transactions": rows,
		"total":        total,
		"totalPages":   totalPages,
		"currentPage":  q.Page,
		"summary": fiber.Map{
			"totalDebit":  summary.TotalDebit,
			"totalCredit": summary.TotalCredit,
		},
	})
}

func (h *Handler) handleExportTransactions(c *fiber.Ctx) error {
	if h.Transactions == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Transaction persistence is not configured")
	}
	userID := principal(c)

	format := c.Query("format", "json")
	if format != "json" && format != "csv" {
		return fail(c, fiber.StatusBadRequest, "format must be csv or json")
	}

	rows, err := h.Transactions.ExportTransactions(c.UserContext(), userID, c.Query("statementId"))
	if err != nil {
		h.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to export transactions")
		return fail(c, fiber.StatusInternalServerError, "Failed to export transactions")
	}

	if format == "csv" {
		var buf bytes.Buffer
		w := writer.CSVWriter{IncludeHeader: true}
		if err := w.Write(&buf, rows); err != nil {
			h.Logger.Error().Err(err).Msg("failed to render csv export")
			return fail(c, fiber.StatusInternalServerError, "Failed to render CSV")
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
		return c.Send(buf.Bytes())
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"transactions": rows,
		"count":        len(rows),
	})
}

func queryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
