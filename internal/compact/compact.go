// Package compact recognizes JOSE compact serializations and decodes their JSON
// segments without touching any key material.
package compact

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrNotAToken is returned when a string has neither the signed nor the encrypted shape.
	ErrNotAToken = errors.New("input is not a compact JWS or JWE")
	// ErrMalformedHeader is the sentinel wrapped by [MalformedHeaderError].
	ErrMalformedHeader = errors.New("malformed token header")
	// ErrMalformedInput is the sentinel wrapped by [MalformedInputError].
	ErrMalformedInput = errors.New("malformed input")
)

// Shape is the structural kind of a compact token.
type Shape int

const (
	ShapeSigned Shape = iota + 1
	ShapeEncrypted
)

func (s Shape) String() string {
	switch s {
	case ShapeSigned:
		return "signed"
	case ShapeEncrypted:
		return "encrypted"
	default:
		return "unknown"
	}
}

// MalformedHeaderError reports a header segment that is not base64url JSON object text.
type MalformedHeaderError struct {
	Err error
}

func (e *MalformedHeaderError) Error() string {
	return "malformed token header: " + e.Err.Error()
}

func (e *MalformedHeaderError) Unwrap() []error {
	return []error{ErrMalformedHeader, e.Err}
}

// MalformedInputError reports request input that cannot be used. Segment names the
// offending part ("header", "payload" or "expiry").
type MalformedInputError struct {
	Segment string
	Err     error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Segment, e.Err)
}

func (e *MalformedInputError) Unwrap() []error {
	return []error{ErrMalformedInput, e.Err}
}

// Classify splits token on "." and decides its shape. A signed token has three
// non-empty segments. An encrypted token has five segments of which only the second
// (the encrypted key) may be empty.
func Classify(token string) (Shape, []string, error) {
	parts := strings.Split(token, ".")
	switch len(parts) {
	case 3:
		for _, p := range parts {
			if p == "" {
				return 0, nil, ErrNotAToken
			}
		}
		return ShapeSigned, parts, nil
	case 5:
		for i, p := range parts {
			if p == "" && i != 1 {
				return 0, nil, ErrNotAToken
			}
		}
		return ShapeEncrypted, parts, nil
	default:
		return 0, nil, ErrNotAToken
	}
}

// DecodeSegment decodes base64url, with or without padding.
func DecodeSegment(seg string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(seg, "="))
}

// DecodeHeader decodes the first segment of a compact token into a JSON object.
func DecodeHeader(seg string) (map[string]any, error) {
	raw, err := DecodeSegment(seg)
	if err != nil {
		return nil, &MalformedHeaderError{Err: err}
	}
	obj, err := unmarshalObject(raw)
	if err != nil {
		return nil, &MalformedHeaderError{Err: err}
	}
	return obj, nil
}

// ParseObject decodes text as a single JSON object with numbers kept as json.Number.
func ParseObject(segment string, text []byte) (map[string]any, error) {
	obj, err := unmarshalObject(text)
	if err != nil {
		return nil, &MalformedInputError{Segment: segment, Err: err}
	}
	return obj, nil
}

func unmarshalObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("expected a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return obj, nil
}

// Marshal renders a JSON object. Keys are sorted.
func Marshal(obj map[string]any) ([]byte, error) {
	return json.Marshal(obj)
}
