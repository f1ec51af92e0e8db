package session

import (
	"errors"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/keys"
)

// ErrNotEncrypted is returned by SetEncryption on a signed-variant state.
var ErrNotEncrypted = errors.New("enc applies to the encrypted variant only")

// DirectiveKind names a side effect the host applies after a transition.
type DirectiveKind int

const (
	// DirectiveMarkKeysStale flags the private and public key inputs as no longer
	// matching the algorithm.
	DirectiveMarkKeysStale DirectiveKind = iota + 1
	// DirectiveMarkSecretStale flags the secret input after its coding changed.
	DirectiveMarkSecretStale
	// DirectiveClearEncryption means encryption-only header members were removed.
	DirectiveClearEncryption
	// DirectiveSetDefaultEncryption means default "alg" and "enc" were filled in.
	DirectiveSetDefaultEncryption
	// DirectiveRegenerateKeys asks the host to generate key material for Algorithm
	// because the inputs it needs are empty.
	DirectiveRegenerateKeys
	// DirectiveShowPanel asks the host to show the inputs named by Panel.
	DirectiveShowPanel
	// DirectiveLoadDerivation means PBES2 iteration count and salt were copied from
	// the header into the key material.
	DirectiveLoadDerivation
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveMarkKeysStale:
		return "mark-keys-stale"
	case DirectiveMarkSecretStale:
		return "mark-secret-stale"
	case DirectiveClearEncryption:
		return "clear-encryption"
	case DirectiveSetDefaultEncryption:
		return "set-default-encryption"
	case DirectiveRegenerateKeys:
		return "regenerate-keys"
	case DirectiveShowPanel:
		return "show-panel"
	case DirectiveLoadDerivation:
		return "load-derivation"
	default:
		return "unknown"
	}
}

// Directive is one host side effect.
type Directive struct {
	Kind      DirectiveKind
	Algorithm jwa.Algorithm
	Panel     KeyPanel
}

// SetVariant switches between signed and encrypted.
//
// Signed to encrypted keeps a key-encryption "alg" if one is present and otherwise
// sets RSA-OAEP-256; a missing "enc" becomes A256GCM. Encrypted to signed removes
// the encryption-only members and sets "alg" to HS256. Key inputs are marked stale
// unless the previous algorithm was an RSA signing algorithm.
func SetVariant(s State, v goJWT.Variant) (State, []Directive) {
	if s.Variant == v || v == goJWT.VariantUnknown {
		return s, nil
	}
	prior := s.Algorithm()
	next := s.clone()
	next.Variant = v

	var ds []Directive
	switch v {
	case goJWT.VariantEncrypted:
		if jwa.FamilyOf(prior) != jwa.FamilyKeyEncryption {
			next.Header["alg"] = string(DefaultKeyEncryption)
		}
		if jwa.FamilyOf(next.Encryption()) != jwa.FamilyContentEncryption {
			next.Header["enc"] = string(DefaultContentEncryption)
		}
		ds = append(ds, Directive{Kind: DirectiveSetDefaultEncryption, Algorithm: next.Algorithm()})
	case goJWT.VariantSigned:
		for _, m := range encryptionOnly {
			delete(next.Header, m)
		}
		next.Header["alg"] = string(DefaultSigning)
		ds = append(ds, Directive{Kind: DirectiveClearEncryption, Algorithm: DefaultSigning})
	}

	ds = append(ds, Directive{Kind: DirectiveShowPanel, Panel: next.Panel()})
	if !jwa.IsRSASigning(prior) {
		ds = append(ds, Directive{Kind: DirectiveMarkKeysStale, Algorithm: next.Algorithm()})
	}
	return next, append(ds, regenerate(next)...)
}

// SetAlgorithm sets "alg". The algorithm must belong to the family of the current
// variant: signing for signed tokens, key encryption for encrypted ones.
func SetAlgorithm(s State, alg jwa.Algorithm) (State, []Directive, error) {
	want := jwa.FamilySigning
	if s.Variant == goJWT.VariantEncrypted {
		want = jwa.FamilyKeyEncryption
	}
	if _, err := jwa.Parse(string(alg), want); err != nil {
		return s, nil, err
	}
	prior := s.Algorithm()
	if prior == alg {
		return s, nil, nil
	}

	next := s.clone()
	next.Header["alg"] = string(alg)

	var ds []Directive
	if panelFor(prior) != panelFor(alg) {
		ds = append(ds, Directive{Kind: DirectiveShowPanel, Panel: panelFor(alg)})
	}
	if !goJWT.KeysAreCompatible(alg, prior) {
		ds = append(ds, Directive{Kind: DirectiveMarkKeysStale, Algorithm: alg})
	}
	if jwa.IsPBES2(alg) {
		if _, hasCount := next.Header["p2c"]; hasCount {
			next.Keys = derivationFromHeader(next.Header, next.Keys)
			ds = append(ds, Directive{Kind: DirectiveLoadDerivation, Algorithm: alg})
		}
	}
	return next, append(ds, regenerate(next)...), nil
}

// SetEncryption sets "enc". It is only meaningful for the encrypted variant.
func SetEncryption(s State, enc jwa.Algorithm) (State, []Directive, error) {
	if _, err := jwa.Parse(string(enc), jwa.FamilyContentEncryption); err != nil {
		return s, nil, err
	}
	if s.Variant != goJWT.VariantEncrypted {
		return s, nil, ErrNotEncrypted
	}
	if s.Encryption() == enc {
		return s, nil, nil
	}
	next := s.clone()
	next.Header["enc"] = string(enc)
	return next, nil, nil
}

// SetSecretCoding changes how the secret text is read. Any change marks the secret stale.
func SetSecretCoding(s State, coding keys.Coding) (State, []Directive) {
	if s.Keys.SecretCoding == coding {
		return s, nil
	}
	next := s.clone()
	next.Keys.SecretCoding = coding
	return next, []Directive{{Kind: DirectiveMarkSecretStale, Algorithm: next.Algorithm()}}
}

// regenerate asks for new key material when the inputs the algorithm reads are empty.
func regenerate(s State) []Directive {
	alg := s.Algorithm()
	var empty bool
	switch {
	case jwa.IsHMAC(alg):
		empty = s.Keys.Secret == "" && s.Keys.KeySet == ""
	case jwa.IsPBES2(alg):
		empty = s.Keys.Password == ""
	case alg != "":
		empty = s.Keys.KeySet == "" && (s.Keys.PrivateKey == "" || s.Keys.PublicKey == "")
	}
	if !empty {
		return nil
	}
	return []Directive{{Kind: DirectiveRegenerateKeys, Algorithm: alg}}
}
