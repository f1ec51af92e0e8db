package flows

import (
	"context"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/MrEthical07/goJWT/keystore"
)

// KeySetSource loads a named key set.
type KeySetSource interface {
	Get(ctx context.Context, name string) (jose.JSONWebKeySet, error)
}

// KeyResolver turns [keys.Material] into key handles for one operation.
type KeyResolver struct {
	KeySets  KeySetSource
	Selector keystore.Selector
}

func (r KeyResolver) selector() keystore.Selector {
	if r.Selector == nil {
		return keystore.DefaultSelector()
	}
	return r.Selector
}

func (r KeyResolver) namedSet(ctx context.Context, name string) (jose.JSONWebKeySet, error) {
	if r.KeySets == nil {
		return jose.JSONWebKeySet{}, &keys.InvalidKeyError{
			Field: "keySet",
			Err:   fmt.Errorf("no key set repository configured for %q", name),
		}
	}
	set, err := r.KeySets.Get(ctx, name)
	if err != nil {
		return jose.JSONWebKeySet{}, fmt.Errorf("key set %q: %w", name, err)
	}
	return set, nil
}

func (r KeyResolver) pick(ctx context.Context, field string, set jose.JSONWebKeySet, hints keystore.Hints) (any, error) {
	jwk, err := r.selector().Select(ctx, set, hints)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	if jwk.Key == nil {
		return nil, &keys.InvalidKeyError{Field: field, Err: errors.New("selected key has no key material")}
	}
	return jwk.Key, nil
}

// Private resolves the key used to sign or decrypt.
func (r KeyResolver) Private(ctx context.Context, m keys.Material, hints keystore.Hints) (any, error) {
	hints.Private = true
	if m.KeySet != "" {
		set, err := r.namedSet(ctx, m.KeySet)
		if err != nil {
			return nil, err
		}
		return r.pick(ctx, "keySet", set, hints)
	}
	if m.PrivateKey == "" {
		return nil, &keys.InvalidKeyError{Field: "privateKey", Err: keys.ErrKeyMaterialMissing}
	}
	if keys.IsJWKS(m.PrivateKey) {
		set, err := keys.ParseJWKS("privateKey", m.PrivateKey)
		if err != nil {
			return nil, err
		}
		return r.pick(ctx, "privateKey", set, hints)
	}
	return keys.ParsePrivatePEM("privateKey", m.PrivateKey)
}

// Public resolves the key used to verify or encrypt. With no public key text the
// public half of the private key is used.
func (r KeyResolver) Public(ctx context.Context, m keys.Material, hints keystore.Hints) (any, error) {
	if m.KeySet != "" {
		set, err := r.namedSet(ctx, m.KeySet)
		if err != nil {
			return nil, err
		}
		key, err := r.pick(ctx, "keySet", set, hints)
		if err != nil {
			return nil, err
		}
		return keys.PublicOf(key), nil
	}
	if m.PublicKey == "" {
		if m.PrivateKey == "" {
			return nil, &keys.InvalidKeyError{Field: "publicKey", Err: keys.ErrKeyMaterialMissing}
		}
		key, err := r.Private(ctx, m, hints)
		if err != nil {
			return nil, err
		}
		return keys.PublicOf(key), nil
	}
	if keys.IsJWKS(m.PublicKey) {
		set, err := keys.ParseJWKS("publicKey", m.PublicKey)
		if err != nil {
			return nil, err
		}
		key, err := r.pick(ctx, "publicKey", set, hints)
		if err != nil {
			return nil, err
		}
		return keys.PublicOf(key), nil
	}
	return keys.ParsePublicPEM("publicKey", m.PublicKey)
}

// Symmetric resolves an HMAC secret. A named key set is consulted only when no secret
// text is given.
func (r KeyResolver) Symmetric(ctx context.Context, m keys.Material, alg jwa.Algorithm, kid string) ([]byte, []error, error) {
	if m.Secret == "" && m.KeySet != "" {
		set, err := r.namedSet(ctx, m.KeySet)
		if err != nil {
			return nil, nil, err
		}
		key, err := r.pick(ctx, "keySet", set, keystore.Hints{KeyID: kid, Algorithm: alg})
		if err != nil {
			return nil, nil, err
		}
		secret, ok := key.([]byte)
		if !ok {
			return nil, nil, &keys.IncompatibleAlgorithmError{Algorithm: alg, Descriptor: keys.Describe(key, keys.UsageSign)}
		}
		return secret, nil, nil
	}
	sym, warnings, err := keys.ResolveSymmetric(m.SymmetricInput(), alg)
	if err != nil {
		return nil, nil, err
	}
	return sym.Key, warnings, nil
}
