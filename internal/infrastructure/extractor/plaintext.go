package extractor

import (
	"fmt"
	"io"
	"unicode/utf8"
)

func extractPlaintext(r io.Reader, filename string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%s is not valid utf-8 text", filename)
	}
	return string(raw), nil
}
