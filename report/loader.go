// ABOUTME: Report source I/O: reads STA report files or uploaded buffers and decodes them as UTF-8 text.
// ABOUTME: Unreadable or empty sources fail here with the path in the error; the parser never sees them.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptyReport is returned for a report source with no printable content.
var ErrEmptyReport = errors.New("report is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads the report at path and returns its decoded text.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read report %s: %w", path, err)
	}
	text, err := DecodeChecked(data)
	if err != nil {
		return "", fmt.Errorf("read report %s: %w", path, err)
	}
	return text, nil
}

// Decode converts raw bytes to text: a leading UTF-8 BOM is dropped and
// invalid sequences are replaced with U+FFFD.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(data), "�")
}

// DecodeChecked is Decode plus the empty-source check used for uploads.
func DecodeChecked(data []byte) (string, error) {
	text := Decode(data)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReport
	}
	return text, nil
}

func statReport(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read report %s: is a directory", path)
	}
	return info, nil
}
