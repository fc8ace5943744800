// Package extract turns note files into plain text. Plain text notes are
// returned as valid UTF-8; PDF and spreadsheet notes are decoded first.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type decoder func(content []byte) (string, error)

var decoders = map[string]decoder{
	".pdf":  pdfText,
	".xlsx": sheetText,
	".xlsm": sheetText,
}

// IsBinary reports whether notes with extension ext are decoded rather than
// read as text. ext is matched case-insensitively and must include the dot.
func IsBinary(ext string) bool {
	_, ok := decoders[strings.ToLower(ext)]
	return ok
}

// File reads path and returns its text.
func File(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return Bytes(content, filepath.Ext(path))
}

// Bytes returns the text of content, decoding it according to ext. Unknown
// extensions are treated as plain text.
func Bytes(content []byte, ext string) (string, error) {
	if dec, ok := decoders[strings.ToLower(ext)]; ok {
		text, err := dec(content)
		if err != nil {
			return "", err
		}
		return Sanitize([]byte(text)), nil
	}
	return Sanitize(content), nil
}

// Sanitize returns content as valid UTF-8 without a leading byte order mark.
func Sanitize(content []byte) string {
	text := strings.ToValidUTF8(string(content), "\uFFFD")
	return strings.TrimPrefix(text, "\uFEFF")
}
