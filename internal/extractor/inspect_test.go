package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIsPasswordError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"password mention", errors.New("pdfcpu: please provide the correct password"), true},
		{"encryption mention", errors.New("file is encrypted"), true},
		{"mixed case", errors.New("PASSWORD required"), true},
		{"unrelated", errors.New("malformed xref table"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPasswordError(tt.err); got != tt.want {
				t.Errorf("isPasswordError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestInspectRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a.pdf")
	if err := os.WriteFile(path, []byte("plain text, no pdf header"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Inspect(path, ""); err == nil {
		t.Fatal("expected inspection of a non-PDF to fail")
	}
}

func TestInspectMissingFile(t *testing.T) {
	if _, err := Inspect(filepath.Join(t.TempDir(), "absent.pdf"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}
