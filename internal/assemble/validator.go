package assemble

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// SourceValidator checks that a source document is present and readable
// before it enters a merge. Any failure here is fatal to the generation
// request: silently skipping an unreadable source would produce an
// incomplete packet without informing the user.
type SourceValidator struct {
	maxFileSize int64
}

// NewSourceValidator creates a validator with the given size limit.
func NewSourceValidator(maxFileSize int64) *SourceValidator {
	return &SourceValidator{maxFileSize: maxFileSize}
}

// Validate opens the document at path and confirms it is a non-empty,
// readable PDF within the size limit.
func (v *SourceValidator) Validate(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("source document vanished: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access source document %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source path is a directory, not a document: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("source document is not a PDF: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("source document is empty: %s", path)
	}
	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return fmt.Errorf("source document too large: %s (%d bytes, max %d)", path, info.Size(), v.maxFileSize)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("unreadable source document %s: %w", path, err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return fmt.Errorf("source document has no pages: %s", path)
	}
	return nil
}
