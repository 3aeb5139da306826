package pipeline

import "testing"

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name     string
		record   string
		wantOK   bool
		wantType string
	}{
		{
			name:     "metadata event",
			record:   `{"type":"metadata","documentmetadata":{"page_count":2}}`,
			wantOK:   true,
			wantType: EventMetadata,
		},
		{
			name:     "page_data event",
			record:   `{"type":"page_data","transactions":[]}`,
			wantOK:   true,
			wantType: EventPageData,
		},
		{
			name:     "unknown tag still decodes",
			record:   `{"type":"progress","page":3}`,
			wantOK:   true,
			wantType: "progress",
		},
		{
			name:     "object without tag",
			record:   `{"hello":"world"}`,
			wantOK:   true,
			wantType: "",
		},
		{
			name:     "non-object JSON passes through",
			record:   `[1,2,3]`,
			wantOK:   true,
			wantType: "",
		},
		{name: "malformed JSON skipped", record: `{"type":"metadata"`, wantOK: false},
		{name: "blank line skipped", record: "   ", wantOK: false},
		{name: "empty record skipped", record: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := DecodeRecord([]byte(tt.record))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ev.Type != tt.wantType {
				t.Errorf("type = %q, want %q", ev.Type, tt.wantType)
			}
		})
	}
}

func TestDecodeRecordPreservesRawBytes(t *testing.T) {
	record := `{"type":"progress","z":1,"a":2}`
	ev, ok := DecodeRecord([]byte("  " + record + " "))
	if !ok {
		t.Fatal("expected record to decode")
	}
	if string(ev.Raw) != record {
		t.Errorf("raw = %q, want %q", ev.Raw, record)
	}
}

func TestEventMetadata(t *testing.T) {
	tests := []struct {
		name     string
		record   string
		want     Metadata
	}{
		{
			name:   "nested documentmetadata",
			record: `{"type":"metadata","documentmetadata":{"page_count":4,"bank_name":"HDFC","account_number":"XXXX1234"}}`,
			want:   Metadata{PageCount: 4, BankName: "HDFC", AccountNumber: "XXXX1234"},
		},
		{
			name:   "top level fields",
			record: `{"type":"metadata","page_count":2,"bank_name":"ICICI"}`,
			want:   Metadata{PageCount: 2, BankName: "ICICI"},
		},
		{
			name:   "missing fields stay zero",
			record: `{"type":"metadata","documentmetadata":{}}`,
			want:   Metadata{},
		},
		{
			name:   "negative page count ignored",
			record: `{"type":"metadata","documentmetadata":{"page_count":-1}}`,
			want:   Metadata{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := DecodeRecord([]byte(tt.record))
			if !ok {
				t.Fatal("expected record to decode")
			}
			got := ev.Metadata()
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEventTransactions(t *testing.T) {
	ev, ok := DecodeRecord([]byte(`{"type":"page_data","transactions":[{"date":"01-01-2024"},"noise",{"date":"02-01-2024"}]}`))
	if !ok {
		t.Fatal("expected record to decode")
	}
	txns := ev.Transactions()
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2 (non-object entries ignored)", len(txns))
	}
	if d, _ := txns[1].Str("date"); d != "02-01-2024" {
		t.Errorf("second transaction date = %q", d)
	}
}
