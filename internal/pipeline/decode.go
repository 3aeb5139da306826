package pipeline

import (
	"bytes"
	"encoding/json"

	"github.com/Pratham266/cassure-go/internal/models"
)

// Event tags the parse service is known to emit, plus the terminal tags this
// service synthesizes itself.
const (
	EventMetadata = "metadata"
	EventPageData = "page_data"
	EventAccuracy = "accuracy"
	EventError    = "error"
)

// Event is one decoded feed record. Records with an unknown tag (or no tag
// at all) are still events: they are forwarded downstream byte-for-byte via
// Raw, never re-marshaled, so the consumer sees exactly what the producer
// sent.
type Event struct {
	Type   string
	Fields map[string]any
	Raw    []byte
}

// Metadata carries the statement-level facts lifted from a metadata event.
type Metadata struct {
	PageCount     int
	BankName      string
	AccountNumber string
}

// DecodeRecord classifies one text record. ok is false for blank lines and
// records that are not valid JSON; those are skipped, never fatal.
func DecodeRecord(record []byte) (Event, bool) {
	trimmed := bytes.TrimSpace(record)
	if len(trimmed) == 0 {
		return Event{}, false
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return Event{}, false
	}

	ev := Event{Raw: append([]byte(nil), trimmed...)}
	if obj, ok := value.(map[string]any); ok {
		ev.Fields = obj
		if tag, ok := obj["type"].(string); ok {
			ev.Type = tag
		}
	}
	return ev, true
}

// Metadata extracts page count, bank name and masked account number from a
// metadata event. Fields live under "documentmetadata" when the producer
// nests them, or at the top level otherwise; anything missing stays zero.
func (e Event) Metadata() Metadata {
	fields := e.Fields
	if nested, ok := fields["documentmetadata"].(map[string]any); ok {
		fields = nested
	}

	var m Metadata
	if n, ok := fields["page_count"].(float64); ok && n >= 0 {
		m.PageCount = int(n)
	}
	if s, ok := fields["bank_name"].(string); ok {
		m.BankName = s
	}
	if s, ok := fields["account_number"].(string); ok {
		m.AccountNumber = s
	}
	return m
}

// Transactions returns the transaction objects of a page_data event. The
// returned maps alias e.Fields, so mutating them mutates the event; that is
// how normalization reaches the re-emitted payload. Entries that are not
// JSON objects are ignored.
func (e Event) Transactions() []models.Txn {
	list, ok := e.Fields["transactions"].([]any)
	if !ok {
		return nil
	}
	txns := make([]models.Txn, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			txns = append(txns, models.Txn(obj))
		}
	}
	return txns
}
