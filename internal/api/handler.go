package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Pratham266/cassure-go/internal/extractor"
	"github.com/Pratham266/cassure-go/internal/storage"
	"github.com/Pratham266/cassure-go/internal/upload"
	"github.com/Pratham266/cassure-go/internal/upstream"
	"github.com/Pratham266/cassure-go/internal/version"
)

// userHeader names the principal established by the auth layer in front of
// this service. Auth itself is not this service's job.
const userHeader = "X-User-ID"

// InspectFunc probes an uploaded document for page count and password
// protection. Overridable so handler tests do not need real PDFs.
type InspectFunc func(path, password string) (extractor.Info, error)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Statements   storage.StatementStore
	Transactions storage.TransactionStore
	Parser       upstream.Parser
	Uploads      *upload.Store
	Inspect      InspectFunc

	Tolerance      float64
	ProcessTimeout time.Duration
	Logger         zerolog.Logger
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/simple-statements/upload", h.handleProcess)

	app.Post("/api/statements/upload", h.handleUpload)
	app.Get("/api/statements", h.handleListStatements)
	app.Get("/api/statements/:id", h.handleGetStatement)
	app.Delete("/api/statements/:id", h.handleDeleteStatement)

	app.Get("/api/transactions", h.handleListTransactions)
	app.Get("/api/transactions/export", h.handleExportTransactions)

	app.Post("/api/help", h.handleHelp)
	app.Get("/api/health", h.handleHealth)
}

func (h *Handler) inspect(path, password string) (extractor.Info, error) {
	if h.Inspect != nil {
		return h.Inspect(path, password)
	}
	return extractor.Inspect(path, password)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version.Version,
	})
}

// helpRequest is a support message from the client app. It is acknowledged
// and logged; delivery to a support channel is handled elsewhere.
type helpRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *Handler) handleHelp(c *fiber.Ctx) error {
	var req helpRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid help request payload")
	}

	h.Logger.Info().
		Str("name", req.Name).
		Str("email", req.Email).
		Str("message", req.Message).
		Msg("help request received")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Help request received successfully. Our team will get back to you soon.",
	})
}

func principal(c *fiber.Ctx) string {
	if id := c.Get(userHeader); id != "" {
		return id
	}
	return "anonymous"
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

func failWithErr(c *fiber.Ctx, status int, msg string, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
		"error":   err.Error(),
	})
}
