package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const finalPDFPrefix = "data:application/pdf;base64,"

var (
	ErrStampMissing  = errors.New("company stamp is required")
	ErrStampNotImage = errors.New("company stamp must be a base64 image data URI")
	ErrStampTooLarge = errors.New("company stamp exceeds size limit")
	ErrPDFInvalid    = errors.New("final pdf must be a base64 application/pdf data URI")
	ErrPDFTooLarge   = errors.New("final pdf exceeds size limit")
)

// CompanyStamp is a validated stamp image.
type CompanyStamp struct {
	DataURI string
	MIME    string
	Bytes   []byte
	Width   int
	Height  int
}

// ParseCompanyStamp validates a stamp data URI and decodes the image header.
func ParseCompanyStamp(raw string, maxBytes int64) (CompanyStamp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CompanyStamp{}, ErrStampMissing
	}
	uri, ok := parseDataURI(raw)
	if !ok || !strings.HasPrefix(uri.mime, "image/") {
		return CompanyStamp{}, ErrStampNotImage
	}
	if maxBytes > 0 && int64(len(uri.payload)) > base64Ceiling(maxBytes) {
		return CompanyStamp{}, fmt.Errorf("%w (%d bytes)", ErrStampTooLarge, maxBytes)
	}
	decoded, err := decodeBase64(uri.payload)
	if err != nil || len(decoded) == 0 {
		return CompanyStamp{}, ErrStampNotImage
	}
	if maxBytes > 0 && int64(len(decoded)) > maxBytes {
		return CompanyStamp{}, fmt.Errorf("%w (%d bytes)", ErrStampTooLarge, maxBytes)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(decoded))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return CompanyStamp{}, ErrStampNotImage
	}
	return CompanyStamp{
		DataURI: raw,
		MIME:    uri.mime,
		Bytes:   decoded,
		Width:   cfg.Width,
		Height:  cfg.Height,
	}, nil
}

// ParseFinalPDF validates the optional final PDF payload.
// An empty input returns (nil, nil).
func ParseFinalPDF(raw string, maxBytes int64) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(strings.ToLower(raw), finalPDFPrefix) {
		return nil, ErrPDFInvalid
	}
	payload := raw[len(finalPDFPrefix):]
	if maxBytes > 0 && int64(len(payload)) > base64Ceiling(maxBytes) {
		return nil, fmt.Errorf("%w (%d bytes)", ErrPDFTooLarge, maxBytes)
	}
	decoded, err := decodeBase64(payload)
	if err != nil || !bytes.HasPrefix(decoded, []byte("%PDF-")) {
		return nil, ErrPDFInvalid
	}
	if maxBytes > 0 && int64(len(decoded)) > maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrPDFTooLarge, maxBytes)
	}
	return decoded, nil
}

// base64Ceiling is the longest encoded form a payload of n bytes can have,
// so oversized input is rejected before decoding it.
func base64Ceiling(n int64) int64 {
	return ((n+2)/3)*4 + 4
}
