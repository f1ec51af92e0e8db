package session

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/keys"
)

const (
	// DefaultKeyEncryption is set when switching to the encrypted variant without a
	// key-encryption algorithm.
	DefaultKeyEncryption = jwa.RSAOAEP256
	// DefaultContentEncryption is set when switching to the encrypted variant without "enc".
	DefaultContentEncryption = jwa.A256GCM
	// DefaultSigning is set when switching back to the signed variant.
	DefaultSigning = jwa.HS256
)

// members that only make sense in an encrypted header.
var encryptionOnly = []string{"enc", "p2c", "p2s", "epk", "zip"}

// KeyPanel says which key inputs the current algorithm reads.
type KeyPanel int

const (
	PanelNone KeyPanel = iota
	// PanelSymmetric is the secret or password input.
	PanelSymmetric
	// PanelKeyPair is the private and public key inputs.
	PanelKeyPair
)

// State is one editing session. Header and Payload are owned by the State; transitions
// copy them before changing anything.
type State struct {
	Variant goJWT.Variant
	Header  map[string]any
	Payload map[string]any
	Keys    goJWT.KeyMaterial
}

// New returns a signed-variant state with an HS256 header and an empty payload.
func New() State {
	return State{
		Variant: goJWT.VariantSigned,
		Header:  map[string]any{"alg": string(DefaultSigning), "typ": "JWT"},
		Payload: map[string]any{},
	}
}

func (s State) clone() State {
	out := s
	out.Header = maps.Clone(s.Header)
	if out.Header == nil {
		out.Header = map[string]any{}
	}
	out.Payload = maps.Clone(s.Payload)
	if out.Payload == nil {
		out.Payload = map[string]any{}
	}
	return out
}

// Algorithm returns the header's "alg", or "" when absent or not a string.
func (s State) Algorithm() jwa.Algorithm {
	alg, _ := s.Header["alg"].(string)
	return jwa.Algorithm(alg)
}

// Encryption returns the header's "enc", or "".
func (s State) Encryption() jwa.Algorithm {
	enc, _ := s.Header["enc"].(string)
	return jwa.Algorithm(enc)
}

// Panel reports which key inputs the current algorithm reads.
func (s State) Panel() KeyPanel {
	return panelFor(s.Algorithm())
}

func panelFor(alg jwa.Algorithm) KeyPanel {
	switch {
	case alg == "":
		return PanelNone
	case jwa.IsHMAC(alg), jwa.IsPBES2(alg):
		return PanelSymmetric
	default:
		return PanelKeyPair
	}
}

// EncodeRequest renders the state as an Engine request.
func (s State) EncodeRequest(expiry goJWT.ExpiryDirective, includeIssuedAt bool) (goJWT.EncodeRequest, error) {
	header, err := json.Marshal(s.Header)
	if err != nil {
		return goJWT.EncodeRequest{}, fmt.Errorf("session header: %w", err)
	}
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return goJWT.EncodeRequest{}, fmt.Errorf("session payload: %w", err)
	}
	return goJWT.EncodeRequest{
		Header:          string(header),
		Payload:         string(payload),
		Expiry:          expiry,
		IncludeIssuedAt: includeIssuedAt,
		Keys:            s.Keys,
	}, nil
}

// FromDecoded builds the state shown after a token was decoded with km. PBES2
// derivation parameters found in the header are copied into the key material.
func FromDecoded(res *goJWT.DecodeResult, km goJWT.KeyMaterial) State {
	s := State{Variant: res.Variant, Header: res.Header, Payload: res.Payload, Keys: km}.clone()
	if jwa.IsPBES2(s.Algorithm()) {
		s.Keys = derivationFromHeader(s.Header, s.Keys)
	}
	return s
}

func derivationFromHeader(header map[string]any, km keys.Material) keys.Material {
	if p2c, ok := header["p2c"]; ok {
		km.Iterations = strings.TrimSpace(fmt.Sprint(p2c))
	}
	if p2s, ok := header["p2s"].(string); ok {
		km.Salt = p2s
		km.SaltCoding = keys.CodingBase64
	}
	return km
}
