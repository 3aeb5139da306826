package api

import (
	"bufio"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Pratham266/cassure-go/internal/extractor"
	"github.com/Pratham266/cassure-go/internal/models"
	"github.com/Pratham266/cassure-go/internal/pipeline"
	"github.com/Pratham266/cassure-go/internal/upload"
	"github.com/Pratham266/cassure-go/internal/upstream"
)

const ndjsonContentType = "application/x-ndjson"

// incoming is an upload that passed validation and document inspection.
type incoming struct {
	saved    *upload.Saved
	bankName string
	password string
	info     extractor.Info
}

func (in *incoming) job() upstream.ParseJob {
	return upstream.ParseJob{
		Path:     in.saved.Path,
		FileName: in.saved.OriginalName,
		BankName: in.bankName,
		Password: in.password,
	}
}

// receiveUpload validates the multipart upload, persists it to the temp
// directory and inspects it. On failure the response has already been
// written and the returned incoming is nil.
func (h *Handler) receiveUpload(c *fiber.Ctx) (*incoming, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fail(c, fiber.StatusBadRequest, "No file uploaded")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return nil, fail(c, fiber.StatusBadRequest, "Only PDF files are supported")
	}

	saved, err := h.Uploads.Save(fh)
	if err != nil {
		h.Logger.Error().Err(err).Str("file", fh.Filename).Msg("failed to persist upload")
		return nil, fail(c, fiber.StatusInternalServerError, "Failed to store uploaded file")
	}

	bankName := c.FormValue("bank_name")
	if bankName == "" {
		bankName = c.FormValue("bankName")
	}
	password := c.FormValue("password")

	info, err := h.inspect(saved.Path, password)
	if err != nil {
		saved.Cleanup()
		if errors.Is(err, extractor.ErrPasswordRequired) {
			return nil, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"code":    "PASSWORD_REQUIRED",
				"message": "This PDF is password protected. Please provide the password.",
			})
		}
		h.Logger.Error().Err(err).Str("file", fh.Filename).Msg("document inspection failed")
		return nil, fail(c, fiber.StatusBadRequest, "Could not read the uploaded PDF")
	}

	return &incoming{
		saved:    saved,
		bankName: bankName,
		password: password,
		info:     info,
	}, nil
}

// handleProcess converts a statement and streams the normalized NDJSON
// events back to the client as they are produced. The terminal accuracy or
// error event is always the last line of the stream, and the HTTP status is
// 200 even when processing fails mid-stream; clients must watch for the
// in-band error event.
func (h *Handler) handleProcess(c *fiber.Ctx) error {
	userID := principal(c)

	in, err := h.receiveUpload(c)
	if in == nil {
		return err
	}

	body, err := h.Parser.Parse(context.Background(), in.job())
	if err != nil {
		// The upstream refused the document outright, so no stream ever
		// started and a plain JSON error is still possible.
		h.Logger.Error().Err(err).Str("file", in.saved.OriginalName).Msg("upstream parse failed")
		h.recordOutcome(userID, models.Outcome{
			Status:       models.StatusFailed,
			FileName:     in.saved.OriginalName,
			PageCount:    in.info.PageCount,
			ErrorMessage: err.Error(),
		})
		in.saved.Cleanup()
		return failWithErr(c, fiber.StatusBadGateway, "Error processing statement", err)
	}

	// Everything the stream writer needs is captured here. The fiber
	// context must not be touched after the handler returns.
	saved := in.saved
	cfg := pipeline.RunConfig{
		FileName:  saved.OriginalName,
		PageCount: in.info.PageCount,
		Tolerance: h.Tolerance,
		Logger:    h.Logger.With().Str("file", saved.OriginalName).Logger(),
	}

	c.Set(fiber.HeaderContentType, ndjsonContentType)
	c.Status(fiber.StatusOK)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer saved.Cleanup()
		defer body.Close()

		emit := func(record []byte) error {
			if _, err := w.Write(record); err != nil {
				return err
			}
			return w.Flush()
		}

		run := pipeline.NewRun(cfg, emit)
		consumeErr := run.Consume(context.Background(), body)
		outcome := run.Finalize(consumeErr)
		h.recordOutcome(userID, outcome)
	})
	return nil
}

// recordOutcome writes the audit row for a finished run. Audit failures are
// logged and swallowed; they never affect the client response.
func (h *Handler) recordOutcome(userID string, outcome models.Outcome) {
	if h.Statements == nil {
		h.Logger.Debug().Msg("audit store not configured, skipping outcome record")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Statements.RecordOutcome(ctx, userID, outcome); err != nil {
		h.Logger.Error().Err(err).
			Str("user_id", userID).
			Str("file", outcome.FileName).
			Msg("failed to record statement outcome")
	}
}
