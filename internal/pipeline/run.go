package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/Pratham266/cassure-go/internal/models"
)

// State of a run. A run moves Streaming → Finalizing → Done; Errored is
// reachable from any earlier state and still produces an outcome.
type State int

const (
	StateStreaming State = iota
	StateFinalizing
	StateDone
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// A stream that ends without a single transaction is a distinct failure:
// there is nothing to reconcile, and reporting it as accurate would be a
// silent lie.
const noTransactionsMsg = "no transactions found in statement"

// RunConfig parameterises one pipeline run.
type RunConfig struct {
	FileName  string
	PageCount int // from upload inspection; a metadata event overrides it
	Tolerance float64
	Logger    zerolog.Logger
}

// Run drives one uploaded statement end to end: chunk reassembly, record
// decoding, per-transaction normalization with immediate downstream
// emission, and end-of-stream ordering plus reconciliation. One Run serves
// exactly one request and is not safe for concurrent use.
type Run struct {
	cfg    RunConfig
	frames FrameReassembler
	emit   func([]byte) error
	logger zerolog.Logger

	state    State
	txns     []models.Txn
	meta     Metadata
	metaSeen bool
	skipped  int
}

// NewRun constructs a run writing each emitted event, newline-terminated, to
// downstream. A nil downstream discards emissions, which is how the async
// variant runs the same pipeline without a connected consumer.
func NewRun(cfg RunConfig, downstream func([]byte) error) *Run {
	return &Run{
		cfg:    cfg,
		emit:   downstream,
		logger: cfg.Logger.With().Str("component", "pipeline").Str("file", cfg.FileName).Logger(),
		meta:   Metadata{PageCount: cfg.PageCount},
	}
}

// State reports the run's current lifecycle state.
func (r *Run) State() State { return r.state }

// Consume reads the upstream body chunk by chunk until EOF, feeding every
// chunk through the pipeline, then flushes the trailing partial record. It
// returns the first transport, context, or downstream error; the caller
// still owes a Finalize call in that case so the failure is reported.
func (r *Run) Consume(ctx context.Context, upstream io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			r.state = StateErrored
			return err
		}

		n, err := upstream.Read(buf)
		if n > 0 {
			if herr := r.HandleChunk(buf[:n]); herr != nil {
				r.state = StateErrored
				return herr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			r.state = StateErrored
			return fmt.Errorf("read upstream stream: %w", err)
		}
	}

	if err := r.frames.Finish(r.handleRecord); err != nil {
		r.state = StateErrored
		return err
	}
	return nil
}

// HandleChunk feeds one raw chunk through reassembly and record handling.
func (r *Run) HandleChunk(chunk []byte) error {
	return r.frames.Feed(chunk, r.handleRecord)
}

func (r *Run) handleRecord(record []byte) error {
	ev, ok := DecodeRecord(record)
	if !ok {
		r.skipped++
		r.logger.Debug().Int("bytes", len(record)).Msg("skipping malformed record")
		return nil
	}

	switch ev.Type {
	case EventMetadata:
		m := ev.Metadata()
		if m.PageCount > 0 {
			r.meta.PageCount = m.PageCount
		}
		if m.BankName != "" {
			r.meta.BankName = m.BankName
		}
		if m.AccountNumber != "" {
			r.meta.AccountNumber = m.AccountNumber
		}
		r.metaSeen = true
		return r.forward(ev.Raw)

	case EventPageData:
		txns := ev.Transactions()
		for i := range txns {
			txns[i] = Normalize(txns[i])
		}
		r.txns = append(r.txns, txns...)

		// The transaction maps alias ev.Fields, so re-marshaling emits the
		// normalized values while untouched fields ride along.
		payload, err := json.Marshal(ev.Fields)
		if err != nil {
			r.skipped++
			r.logger.Warn().Err(err).Msg("dropping unmarshalable page_data event")
			return nil
		}
		return r.forward(payload)

	default:
		// Unrecognized but valid JSON passes through unmodified.
		return r.forward(ev.Raw)
	}
}

// Finalize ends the run and produces its outcome. consumeErr is whatever
// Consume returned; when non-nil the run is reported failed and, since the
// downstream stream may already be mid-flight, the failure also goes out as
// an in-band error event. Every stream therefore ends with exactly one
// terminal accuracy or error event.
func (r *Run) Finalize(consumeErr error) models.Outcome {
	if r.state != StateErrored {
		r.state = StateFinalizing
	}

	outcome := models.Outcome{
		FileName:            r.cfg.FileName,
		PageCount:           r.meta.PageCount,
		BankName:            r.meta.BankName,
		MaskedAccountNumber: r.meta.AccountNumber,
		TransactionCount:    len(r.txns),
		Transactions:        r.txns,
	}

	if consumeErr != nil {
		outcome.Status = models.StatusFailed
		outcome.ErrorMessage = consumeErr.Error()
		r.emitError(consumeErr.Error())
		r.state = StateErrored
		return outcome
	}

	if len(r.txns) == 0 {
		outcome.Status = models.StatusFailed
		outcome.ErrorMessage = noTransactionsMsg
		r.emitError(noTransactionsMsg)
		r.state = StateDone
		return outcome
	}

	if ResolveOrder(r.txns) {
		r.logger.Debug().Int("count", len(r.txns)).Msg("reversed descending transaction order")
	}

	accuracy := Reconcile(r.txns, r.cfg.Tolerance)
	outcome.Status = models.StatusCompleted
	outcome.IsAccurate = accuracy.IsAccurate
	outcome.Accuracy = &accuracy

	if payload, err := json.Marshal(map[string]any{
		"type":     EventAccuracy,
		"accuracy": accuracy,
	}); err == nil {
		if ferr := r.forward(payload); ferr != nil {
			r.logger.Warn().Err(ferr).Msg("failed to emit accuracy event")
		}
	}

	r.logger.Info().
		Int("transactions", len(r.txns)).
		Int("skipped_records", r.skipped).
		Bool("accurate", accuracy.IsAccurate).
		Msg("statement reconciled")

	r.state = StateDone
	return outcome
}

func (r *Run) forward(payload []byte) error {
	if r.emit == nil {
		return nil
	}
	return r.emit(append(payload, '\n'))
}

func (r *Run) emitError(msg string) {
	payload, err := json.Marshal(map[string]string{
		"type":    EventError,
		"message": msg,
	})
	if err != nil {
		return
	}
	if ferr := r.forward(payload); ferr != nil {
		r.logger.Warn().Err(ferr).Msg("failed to emit terminal error event")
	}
}
