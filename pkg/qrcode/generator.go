package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content is empty or whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrGenerationFailed is returned when the underlying encoder fails.
	ErrGenerationFailed = errors.New("failed to generate QR code")
)

// DefaultSize is the PNG edge length in pixels used when size is not positive.
const DefaultSize = 256

// Generate returns a PNG image encoding content, size pixels on each side.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// GenerateBase64Image returns a data-URI (base64 PNG) for direct embedding
// in HTML.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
