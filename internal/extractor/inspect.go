package extractor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrPasswordRequired marks a password-protected document uploaded without a
// password. The parse service owns decryption; callers should ask the
// client for the password rather than fail the upload outright.
var ErrPasswordRequired = errors.New("pdf is password protected and no password was provided")

// Info describes an uploaded document.
type Info struct {
	PageCount int
	Encrypted bool
}

// Inspect opens the document just far enough to count pages and detect
// password protection. For protected documents with a supplied password the
// count is attempted with that password; if it still fails the document is
// forwarded anyway with an unknown page count, since the parse service
// performs its own decryption.
func Inspect(path, password string) (Info, error) {
	f, r, err := pdf.Open(path)
	if err == nil {
		defer f.Close()
		return Info{PageCount: r.NumPage()}, nil
	}

	// The primary reader gives up on encrypted and on merely unusual
	// documents alike; pdfcpu distinguishes the two.
	info, cpuErr := inspectWithPdfcpu(path, password)
	if cpuErr == nil {
		return info, nil
	}

	if isPasswordError(cpuErr) || isPasswordError(err) {
		if password == "" {
			return Info{Encrypted: true}, ErrPasswordRequired
		}
		return Info{Encrypted: true}, nil
	}

	return Info{}, fmt.Errorf("inspect pdf: %w", err)
}

func inspectWithPdfcpu(path, password string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	count, err := api.PageCount(f, conf)
	if err != nil {
		return Info{}, err
	}
	return Info{PageCount: count, Encrypted: password != ""}, nil
}

// isPasswordError sniffs reader error text for encryption markers; neither
// reader exposes a typed error for it.
func isPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypted")
}
