package keystore

import (
	"context"
	"errors"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/keys"
)

// ErrKeyNotFound is returned when no key in a set matches the lookup hints.
var ErrKeyNotFound = errors.New("no matching key in key set")

// Hints are the header parameters used to pick a key out of a set.
type Hints struct {
	KeyID     string
	Algorithm jwa.Algorithm
	// Private requires a key that carries private material.
	Private bool
}

// Selector picks one key out of a set.
type Selector interface {
	Select(ctx context.Context, set jose.JSONWebKeySet, hints Hints) (jose.JSONWebKey, error)
}

// SelectorFunc adapts a function to [Selector].
type SelectorFunc func(ctx context.Context, set jose.JSONWebKeySet, hints Hints) (jose.JSONWebKey, error)

// Select implements [Selector].
func (f SelectorFunc) Select(ctx context.Context, set jose.JSONWebKeySet, hints Hints) (jose.JSONWebKey, error) {
	return f(ctx, set, hints)
}

// DefaultSelector returns the matching rule used by the engine unless overridden.
func DefaultSelector() Selector {
	return SelectorFunc(func(_ context.Context, set jose.JSONWebKeySet, hints Hints) (jose.JSONWebKey, error) {
		return Select(set, hints)
	})
}

// Select returns the key whose kid equals hints.KeyID. Without a kid match it falls back
// to the first key declaring hints.Algorithm, then to the first key whose type admits
// hints.Algorithm.
func Select(set jose.JSONWebKeySet, hints Hints) (jose.JSONWebKey, error) {
	candidates := make([]jose.JSONWebKey, 0, len(set.Keys))
	for _, k := range set.Keys {
		if hints.Private && k.IsPublic() {
			continue
		}
		candidates = append(candidates, k)
	}

	if hints.KeyID != "" {
		for _, k := range candidates {
			if k.KeyID == hints.KeyID {
				return k, nil
			}
		}
	}

	if hints.Algorithm != "" {
		for _, k := range candidates {
			if k.Algorithm == string(hints.Algorithm) {
				return k, nil
			}
		}
		for _, k := range candidates {
			if k.Algorithm == "" && keys.IsCompatible(hints.Algorithm, keys.Describe(k.Key, keys.UsageSign)) {
				return k, nil
			}
		}
		return jose.JSONWebKey{}, ErrKeyNotFound
	}

	if hints.KeyID == "" && len(candidates) > 0 {
		return candidates[0], nil
	}
	return jose.JSONWebKey{}, ErrKeyNotFound
}
