package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// extractTXT decodes plain-text bytes: UTF-8 when valid, then a Latin-1
// pass, and finally UTF-8 with invalid sequences dropped rather than
// failing the upload.
func extractTXT(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	if s, ok := decodeLatin1(data); ok {
		return s, nil
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// decodeLatin1 maps every byte through ISO 8859-1. The mapping itself never
// fails, so a decode that produces C1 control characters is treated as the
// failure case: the input was some other 8-bit encoding, not Latin-1 text.
func decodeLatin1(data []byte) (string, bool) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	s := string(decoded)
	for _, r := range s {
		if r >= 0x80 && r <= 0x9f {
			return "", false
		}
	}
	return s, true
}
