package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func collectRecords(t *testing.T, chunks [][]byte) []string {
	t.Helper()

	var got []string
	emit := func(record []byte) error {
		got = append(got, string(record))
		return nil
	}

	var f FrameReassembler
	for _, chunk := range chunks {
		if err := f.Feed(chunk, emit); err != nil {
			t.Fatalf("unexpected feed error: %v", err)
		}
	}
	if err := f.Finish(emit); err != nil {
		t.Fatalf("unexpected finish error: %v", err)
	}
	return got
}

func TestFeedSplitsOnNewlines(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{
			name:   "single complete record",
			chunks: []string{"{\"a\":1}\n"},
			want:   []string{"{\"a\":1}"},
		},
		{
			name:   "record split across chunks",
			chunks: []string{"{\"a\"", ":1}\n"},
			want:   []string{"{\"a\":1}"},
		},
		{
			name:   "split mid escape sequence",
			chunks: []string{"{\"s\":\"a\\", "n b\"}\n"},
			want:   []string{"{\"s\":\"a\\n b\"}"},
		},
		{
			name:   "trailing partial flushed by finish",
			chunks: []string{"first\nsec", "ond"},
			want:   []string{"first", "second"},
		},
		{
			name:   "crlf terminators trimmed",
			chunks: []string{"one\r\ntwo\r\n"},
			want:   []string{"one", "two"},
		},
		{
			name:   "empty lines preserved as records",
			chunks: []string{"a\n\nb\n"},
			want:   []string{"a", "", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := make([][]byte, len(tt.chunks))
			for i, c := range tt.chunks {
				chunks[i] = []byte(c)
			}
			got := collectRecords(t, chunks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records %q, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("record %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Reassembly must not depend on where the transport cut the stream: every
// possible two-chunk split of the same bytes yields the same records.
func TestFeedSplitInvariance(t *testing.T) {
	stream := []byte("{\"type\":\"metadata\",\"documentmetadata\":{\"page_count\":2}}\n" +
		"{\"type\":\"page_data\",\"transactions\":[{\"date\":\"01/02/24\",\"amount\":\"1,000\"}]}\n" +
		"tail-without-newline")

	want := collectRecords(t, [][]byte{stream})

	for cut := 0; cut <= len(stream); cut++ {
		got := collectRecords(t, [][]byte{stream[:cut], stream[cut:]})
		if len(got) != len(want) {
			t.Fatalf("cut %d: got %d records, want %d", cut, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("cut %d record %d: got %q, want %q", cut, i, got[i], want[i])
			}
		}
	}
}

func TestFeedNeverEmitsEmbeddedNewline(t *testing.T) {
	var f FrameReassembler
	payload := []byte(strings.Repeat("line\nmore\n", 50) + "partial")
	err := f.Feed(payload, func(record []byte) error {
		if bytes.IndexByte(record, '\n') >= 0 {
			return fmt.Errorf("record contains newline: %q", record)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !f.Pending() {
		t.Error("expected trailing partial to stay buffered")
	}
}

func TestFinishWithEmptyBufferEmitsNothing(t *testing.T) {
	var f FrameReassembler
	if err := f.Feed([]byte("done\n"), func([]byte) error { return nil }); err != nil {
		t.Fatal(err)
	}
	err := f.Finish(func(record []byte) error {
		return fmt.Errorf("unexpected record %q", record)
	})
	if err != nil {
		t.Fatal(err)
	}
}
