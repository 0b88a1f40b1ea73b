package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/spigell/liquidhire/internal/utils"
)

// PDF content types accepted for upload.
const (
	ContentTypePDF         = "application/pdf"
	ContentTypeOctetStream = "application/octet-stream"
)

// MaxTextRunes caps extracted résumé text. Interview requests accept
// resume_text up to the same length.
const MaxTextRunes = 50000

// ErrNotPDF is returned for data without a PDF header.
var ErrNotPDF = errors.New("not a pdf document")

// Accepts reports whether an upload with this content type should be parsed.
func Accepts(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case ContentTypePDF, ContentTypeOctetStream:
		return true
	default:
		return false
	}
}

// ExtractText returns the plain text of every page, trimmed and capped at
// MaxTextRunes.
func ExtractText(data []byte) (text string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF")) {
		return "", ErrNotPDF
	}

	// The parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}

	return capText(string(raw)), nil
}

func capText(s string) string {
	return strings.TrimSpace(utils.TruncateRunes(strings.TrimSpace(s), MaxTextRunes, ""))
}
