package keys

import (
	"encoding/json"
	"errors"
	"strings"

	jose "github.com/go-jose/go-jose/v3"
)

// IsJWKS reports whether text is a JSON object whose non-empty "keys" array starts
// with an object carrying "kty".
func IsJWKS(text string) bool {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "{") {
		return false
	}
	var probe struct {
		Keys []map[string]json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return false
	}
	if len(probe.Keys) == 0 {
		return false
	}
	_, ok := probe.Keys[0]["kty"]
	return ok
}

// ParseJWKS decodes a key set document.
func ParseJWKS(field, text string) (jose.JSONWebKeySet, error) {
	var set jose.JSONWebKeySet
	if !IsJWKS(text) {
		return set, &InvalidKeyError{Field: field, Err: errors.New("not a JWKS document")}
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &set); err != nil {
		return set, &InvalidKeyError{Field: field, Err: err}
	}
	if len(set.Keys) == 0 {
		return set, &InvalidKeyError{Field: field, Err: errors.New("key set is empty")}
	}
	return set, nil
}
