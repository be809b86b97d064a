package workflow

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ProfileSignatureToken is the request value that selects the saved signature.
// It is recognized only when parsing request input.
const ProfileSignatureToken = "use-profile"

var (
	ErrEmptySignature   = errors.New("signature payload is empty")
	ErrInvalidSignature = errors.New("signature payload is not valid base64")
)

// SignatureSource says where the signature image comes from.
type SignatureSource interface {
	isSignatureSource()
}

// InlineSignature carries a freshly drawn image, bare base64 or a data URI.
type InlineSignature struct {
	Raw string
}

// ProfileSignature selects the signer's saved directory signature.
type ProfileSignature struct{}

func (InlineSignature) isSignatureSource()  {}
func (ProfileSignature) isSignatureSource() {}

// ParseSignatureSource turns request input into a typed source.
func ParseSignatureSource(raw string) (SignatureSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptySignature
	}
	if strings.EqualFold(raw, ProfileSignatureToken) {
		return ProfileSignature{}, nil
	}
	return InlineSignature{Raw: raw}, nil
}

// NormalizeInlineSignature decodes an inline payload and returns it as a data URI.
// Size is not bounded here; request limits apply at the HTTP boundary.
func NormalizeInlineSignature(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptySignature
	}
	mime, payload := "", raw
	if uri, ok := parseDataURI(raw); ok {
		mime, payload = uri.mime, uri.payload
	}
	decoded, err := decodeBase64(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(decoded) == 0 {
		return "", ErrEmptySignature
	}
	if mime == "" {
		mime = http.DetectContentType(decoded)
		if i := strings.Index(mime, ";"); i >= 0 {
			mime = mime[:i]
		}
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(decoded), nil
}

type dataURI struct {
	mime    string
	payload string
}

func parseDataURI(raw string) (dataURI, bool) {
	if !strings.HasPrefix(strings.ToLower(raw), "data:") {
		return dataURI{}, false
	}
	comma := strings.Index(raw, ",")
	if comma < 0 {
		return dataURI{}, false
	}
	meta := raw[len("data:"):comma]
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return dataURI{}, false
	}
	return dataURI{
		mime:    strings.ToLower(strings.TrimSpace(meta[:len(meta)-len(";base64")])),
		payload: raw[comma+1:],
	}, true
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)
	if b, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(payload)
}
