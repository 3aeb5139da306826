package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Pratham266/cassure-go/internal/models"
	"github.com/Pratham266/cassure-go/internal/pipeline"
	"github.com/Pratham266/cassure-go/internal/storage"
	"github.com/Pratham266/cassure-go/internal/upload"
	"github.com/Pratham266/cassure-go/internal/upstream"
)

// handleUpload accepts a statement for background processing and returns
// 202 immediately. Clients poll GET /api/statements/:id for the result.
func (h *Handler) handleUpload(c *fiber.Ctx) error {
	if h.Statements == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Statement persistence is not configured")
	}
	userID := principal(c)

	in, err := h.receiveUpload(c)
	if in == nil {
		return err
	}

	st := models.Statement{
		ID:               uuid.NewString(),
		UserID:           userID,
		FileName:         in.saved.OriginalName,
		PageCount:        in.info.PageCount,
		UploadDate:       time.Now().UTC(),
		ProcessingStatus: models.StatusProcessing,
		BankName:         in.bankName,
	}
	if err := h.Statements.CreateStatement(c.UserContext(), st); err != nil {
		in.saved.Cleanup()
		h.Logger.Error().Err(err).Str("file", st.FileName).Msg("failed to create statement record")
		return fail(c, fiber.StatusInternalServerError, "Failed to register statement")
	}

	go h.processStatement(st, in.saved, in.job())

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":     true,
		"message":     "Statement accepted for processing",
		"statementId": st.ID,
		"status":      st.ProcessingStatus,
	})
}

// processStatement runs the pipeline for a background upload. Events are
// discarded since nobody is streaming; only the outcome and the accumulated
// transactions are persisted.
func (h *Handler) processStatement(st models.Statement, saved *upload.Saved, job upstream.ParseJob) {
	logger := h.Logger.With().Str("statement_id", st.ID).Str("file", st.FileName).Logger()
	defer saved.Cleanup()

	timeout := h.ProcessTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var outcome models.Outcome
	body, err := h.Parser.Parse(ctx, job)
	if err != nil {
		logger.Error().Err(err).Msg("upstream parse failed")
		outcome = models.Outcome{
			Status:       models.StatusFailed,
			FileName:     st.FileName,
			PageCount:    st.PageCount,
			ErrorMessage: err.Error(),
		}
	} else {
		run := pipeline.NewRun(pipeline.RunConfig{
			FileName:  st.FileName,
			PageCount: st.PageCount,
			Tolerance: h.Tolerance,
			Logger:    logger,
		}, nil)
		consumeErr := run.Consume(ctx, body)
		body.Close()
		outcome = run.Finalize(consumeErr)
	}

	writeCtx, writeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer writeCancel()

	if err := h.Statements.UpdateOutcome(writeCtx, st.ID, outcome); err != nil {
		logger.Error().Err(err).Msg("failed to persist statement outcome")
	}
	if outcome.Status == models.StatusCompleted && len(outcome.Transactions) > 0 && h.Transactions != nil {
		if err := h.Transactions.InsertTransactions(writeCtx, st.ID, st.UserID, outcome.Transactions); err != nil {
			logger.Error().Err(err).Msg("failed to persist transactions")
		}
	}
	logger.Info().
		Str("status", outcome.Status).
		Int("transactions", outcome.TransactionCount).
		Msg("statement processed")
}

func (h *Handler) handleListStatements(c *fiber.Ctx) error {
	if h.Statements == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Statement persistence is not configured")
	}
	userID := principal(c)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	statements, total, err := h.Statements.ListStatements(c.UserContext(), userID, page, limit)
	if err != nil {
		h.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to list statements")
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch statements")
	}
	if limit < 1 {
		limit = 10
	}
	totalPages := (total + limit - 1) / limit

	return c.JSON(fiber.Map{
		"success":     true,
		"statements":  statements,
		"total":       total,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

func (h *Handler) handleGetStatement(c *fiber.Ctx) error {
	if h.Statements == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Statement persistence is not configured")
	}
	userID := principal(c)

	st, err := h.Statements.GetStatement(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Statement not found")
		}
		h.Logger.Error().Err(err).Str("statement_id", c.Params("id")).Msg("failed to fetch statement")
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch statement")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"statement": st,
	})
}

func (h *Handler) handleDeleteStatement(c *fiber.Ctx) error {
	if h.Statements == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Statement persistence is not configured")
	}
	userID := principal(c)

	if err := h.Statements.DeleteStatement(c.UserContext(), userID, c.Params("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Statement not found")
		}
		h.Logger.Error().Err(err).Str("statement_id", c.Params("id")).Msg("failed to delete statement")
		return fail(c, fiber.StatusInternalServerError, "Failed to delete statement")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Statement and its transactions deleted",
	})
}
