// Package extract converts uploaded file bytes into plain text. Page and
// table boundaries are emitted as in-band markers ("Page N", "Table M on
// Page N") so extracted text stays traceable to its source location.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrNoText = errors.New("document contains no extractable text")

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindTXT  Kind = "txt"
)

// KindForFilename maps a filename extension to a supported kind.
func KindForFilename(name string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, true
	case ".docx":
		return KindDOCX, true
	case ".txt":
		return KindTXT, true
	default:
		return "", false
	}
}

// Extract produces the plain-text blob for the given bytes and kind.
// Per-page and per-table failures inside a document are skipped; only a
// document that yields no text at all is an error.
func Extract(data []byte, kind Kind) (string, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
	case KindDOCX:
		text, err = extractDOCX(data)
	case KindTXT:
		text, err = extractTXT(data)
	default:
		return "", fmt.Errorf("unsupported file kind %q", kind)
	}
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
