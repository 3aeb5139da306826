package upstream

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const apiKeyHeader = "X-API-KEY"

// Parser produces the NDJSON event stream for one uploaded document. The
// returned body streams; the caller owns closing it.
type Parser interface {
	Parse(ctx context.Context, job ParseJob) (io.ReadCloser, error)
}

// ParseJob describes one document handed to the parse service.
type ParseJob struct {
	Path     string // local path of the uploaded document
	FileName string // original client-facing name
	BankName string // optional hint forwarded as bank_name
	Password string // optional, for protected documents
}

// Options parameterise the parse service client.
type Options struct {
	URL     string
	APIKey  string
	Timeout time.Duration // bounds the whole exchange, streamed body included
}

// Client calls the external statement parsing service.
type Client struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

// New constructs a parse service client.
func New(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "parse_client").Logger(),
	}
}

// Parse POSTs the document as multipart form data and returns the streaming
// NDJSON response body. Any non-2xx status is a hard failure carrying the
// status and the service's error text; no partial stream is returned.
func (c *Client) Parse(ctx context.Context, job ParseJob) (io.ReadCloser, error) {
	if c.opts.URL == "" {
		return nil, fmt.Errorf("parse service url not configured")
	}

	file, err := os.Open(job.Path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	// Stream the multipart body instead of buffering the document.
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		defer file.Close()
		pw.CloseWithError(writeForm(form, file, job))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("create parse request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.opts.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.opts.APIKey)
	}

	c.logger.Debug().Str("file", job.FileName).Msg("forwarding document to parse service")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call parse service: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("parse service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return resp.Body, nil
}

func writeForm(form *multipart.Writer, file io.Reader, job ParseJob) error {
	part, err := form.CreateFormFile("file", job.FileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if job.BankName != "" {
		if err := form.WriteField("bank_name", job.BankName); err != nil {
			return err
		}
	}
	if job.Password != "" {
		if err := form.WriteField("password", job.Password); err != nil {
			return err
		}
	}
	return form.Close()
}
