package generate

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/keys"
)

// Issuer is the iss claim of generated payloads.
const Issuer = "gojwt.local"

// SecretBytes is the minimum size of generated base64 and hex secrets.
const SecretBytes = 48

// PayloadLifetime is the distance between iat and exp in generated payloads.
const PayloadLifetime = 10 * time.Minute

var (
	names = []string{
		"audrey", "olaf", "antonio", "alma", "ming", "naimish", "anna", "sheniqua",
		"tamara", "kina", "maxine", "arya", "asa", "idris", "evander", "natalia",
	}
	props = []string{"propX", "propY", "aaa", "version", "entitlement", "alpha", "classid"}

	passwordWords = [][]string{
		{"Vaguely", "Undoubtedly", "Indisputably", "Understandably", "Definitely", "Possibly"},
		{"Salty", "Fresh", "Ursine", "Excessive", "Daring", "Delightful", "Stable", "Evolving"},
		{"Mirror", "Caliper", "Postage", "Return", "Roadway", "Passage", "Statement", "Toolbox", "Paradox", "Orbit", "Bridge"},
	}
)

type valueKind int

const (
	kindNumber valueKind = iota
	kindString
	kindBoolean
	kindArray
	kindObject
)

// Generator produces sample values from a seeded ChaCha8 stream. It is not safe
// for concurrent use.
type Generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
}

// New returns a Generator seeded with seed.
func New(seed uint64) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	return &Generator{src: src, rng: rand.New(src)}
}

// Read fills p from the generator's stream.
func (g *Generator) Read(p []byte) (int, error) {
	return g.src.Read(p)
}

func (g *Generator) pick(from []string) string {
	return from[g.rng.IntN(len(from))]
}

func (g *Generator) pickExcept(from []string, except string) string {
	rest := slices.DeleteFunc(slices.Clone(from), func(s string) bool { return s == except })
	if len(rest) == 0 {
		return except
	}
	return g.pick(rest)
}

func (g *Generator) coin() bool {
	return g.rng.IntN(2) == 1
}

// number returns a value between 10 and 100000 with a bias toward small values.
func (g *Generator) number() int {
	lo, hi := 100, 1000
	if g.coin() {
		lo = 10
	}
	if g.coin() {
		hi = 100000
	}
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo)
}

func (g *Generator) word() string {
	var b strings.Builder
	for range 10 + g.rng.IntN(12) {
		b.WriteString(strconv.FormatInt(int64(g.rng.IntN(36)), 36))
	}
	return b.String()
}

func (g *Generator) value(kind valueKind, depth int, parent string) any {
	switch kind {
	case kindNumber:
		return g.number()
	case kindString:
		return g.word()
	case kindBoolean:
		return g.coin()
	case kindArray:
		out := make([]any, 1+g.rng.IntN(4))
		for i := range out {
			out[i] = g.value(g.scalarKind(), depth+1, "")
		}
		return out
	default:
		obj := make(map[string]any)
		for range 1 + g.rng.IntN(4) {
			kind := g.scalarKind()
			if depth < 2 {
				kind = valueKind(g.rng.IntN(int(kindObject) + 1))
			}
			obj[g.pickExcept(props, parent)] = g.value(kind, depth+1, parent)
		}
		return obj
	}
}

func (g *Generator) scalarKind() valueKind {
	return valueKind(g.rng.IntN(int(kindBoolean) + 1))
}

// Name returns one of the sample names.
func (g *Generator) Name() string {
	return g.pick(names)
}

// Password returns a phrase such as "Possibly-Salty-Orbit-0421-0001337".
func (g *Generator) Password() string {
	parts := make([]string, 0, len(passwordWords)+2)
	for _, words := range passwordWords {
		parts = append(parts, g.pick(words))
	}
	parts = append(parts,
		fmt.Sprintf("%04d", g.number()%10000),
		fmt.Sprintf("%07d", g.number()%10000000),
	)
	return strings.Join(parts, "-")
}

// KeyID returns a short random hex identifier suitable for "kid".
func (g *Generator) KeyID() string {
	b := make([]byte, 6)
	_, _ = g.Read(b)
	return hex.EncodeToString(b)
}

// Payload returns a claims set issued at now that expires PayloadLifetime later.
// The audience always differs from the subject.
func (g *Generator) Payload(now time.Time) map[string]any {
	sub := g.Name()
	jti, err := uuid.NewRandomFromReader(g)
	if err != nil {
		// ChaCha8 reads do not fail.
		panic(err)
	}
	payload := map[string]any{
		"iss": Issuer,
		"sub": sub,
		"aud": g.pickExcept(names, sub),
		"iat": now.Unix(),
		"exp": now.Add(PayloadLifetime).Unix(),
		"jti": jti.String(),
	}
	if g.coin() {
		prop := g.pick(props)
		payload[prop] = g.value(valueKind(g.rng.IntN(int(kindObject)+1)), 0, prop)
	}
	return payload
}

// Header returns a protected header for alg. Key-encryption algorithms get a random
// content encryption.
func (g *Generator) Header(alg jwa.Algorithm) map[string]any {
	header := map[string]any{"alg": string(alg)}
	if jwa.FamilyOf(alg) == jwa.FamilyKeyEncryption {
		encs := jwa.ContentEncryption()
		header["enc"] = string(encs[g.rng.IntN(len(encs))])
	}
	if g.coin() {
		header["typ"] = "JWT"
	}
	if g.coin() {
		prop := g.pick(props)
		header[prop] = g.value(g.scalarKind(), 0, prop)
	}
	return header
}

// Secret returns symmetric key text for alg under coding. utf-8 and pbkdf2 codings
// get a password phrase; base64 and hex get at least SecretBytes random bytes, more
// when alg requires a longer key.
func (g *Generator) Secret(alg jwa.Algorithm, coding keys.Coding) string {
	switch coding {
	case keys.CodingBase64, keys.CodingHex:
	default:
		return g.Password()
	}
	n := SecretBytes
	if bits := jwa.RequiredKeyBits(alg); bits/8 > n && bits < 1<<16 {
		n = bits / 8
	}
	b := make([]byte, n)
	_, _ = g.Read(b)
	if coding == keys.CodingHex {
		return hex.EncodeToString(b)
	}
	return base64.StdEncoding.EncodeToString(b)
}

// Keys returns key material for alg. HMAC algorithms get a secret under coding,
// PBES2 algorithms a password, and the rest a PEM key pair drawn from the
// generator's stream.
func (g *Generator) Keys(alg jwa.Algorithm, coding keys.Coding) (keys.Material, error) {
	switch {
	case jwa.IsHMAC(alg):
		if coding == "" {
			coding = keys.CodingUTF8
		}
		return keys.Material{Secret: g.Secret(alg, coding), SecretCoding: coding}, nil
	case jwa.IsPBES2(alg):
		return keys.Material{Password: g.Password()}, nil
	}
	pair, err := KeyPair(alg, g)
	if err != nil {
		return keys.Material{}, err
	}
	return keys.Material{PrivateKey: pair.PrivateKey, PublicKey: pair.PublicKey}, nil
}
