package flows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goJWT/internal/compact"
	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/jwe"
	"github.com/MrEthical07/goJWT/jwt"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/MrEthical07/goJWT/keystore"
)

// FailureKind classifies flow failures for root-level metric and error mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureInput
	FailureShape
	FailureAlgorithm
	FailureKey
	FailureCompatibility
	FailureVerification
	FailureDecryption
	FailurePrimitive
)

// ExpiryMode selects how the exp claim is treated on encode.
type ExpiryMode int

const (
	ExpiryKeep ExpiryMode = iota
	ExpiryNone
	ExpiryRelative
)

// EncodeInput is one encode request, already copied out of the caller's structures.
type EncodeInput struct {
	Header          string
	Payload         string
	Expiry          ExpiryMode
	// ExpiresAfter must be positive when Expiry is ExpiryRelative.
	ExpiresAfter    time.Duration
	IncludeIssuedAt bool
	Keys            keys.Material
}

// EncodeResult carries either the produced token or failure metadata.
type EncodeResult struct {
	Failure   FailureKind
	Err       error
	Token     string
	Header    map[string]any
	Payload   map[string]any
	Shape     compact.Shape
	Algorithm jwa.Algorithm
	Warnings  []error
}

// EncodeDeps captures encode dependencies.
type EncodeDeps struct {
	Now             func() time.Time
	DefaultType     string
	SaltLength      int
	// Iterations is the PBES2 count used when the request leaves it blank.
	Iterations      int
	NewSalt         func(int) ([]byte, error)
	ChooseAlgorithm func([]jwa.Algorithm) jwa.Algorithm
	Keys            KeyResolver
	Logger          *zap.Logger
}

func orDefault(iterations int) int {
	if iterations <= 0 {
		return keys.DefaultIterations
	}
	return iterations
}

func encodeFailure(kind FailureKind, err error, warnings []error) EncodeResult {
	return EncodeResult{Failure: kind, Err: err, Warnings: warnings}
}

// RunEncode assembles and signs or encrypts a token. Any failure aborts the whole
// operation; no partial token is returned.
func RunEncode(ctx context.Context, in EncodeInput, deps EncodeDeps) EncodeResult {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	header, err := compact.ParseObject("header", []byte(in.Header))
	if err != nil {
		return encodeFailure(FailureInput, err, nil)
	}
	payload, err := compact.ParseObject("payload", []byte(in.Payload))
	if err != nil {
		return encodeFailure(FailureInput, err, nil)
	}

	if in.Expiry == ExpiryRelative && in.ExpiresAfter <= 0 {
		return encodeFailure(FailureInput, &compact.MalformedInputError{
			Segment: "payload",
			Err:     fmt.Errorf("relative expiry must be a positive amount, got %v", in.ExpiresAfter),
		}, nil)
	}

	if _, ok := header["typ"]; !ok && deps.DefaultType != "" {
		header["typ"] = deps.DefaultType
	}

	now := deps.Now()
	switch in.Expiry {
	case ExpiryNone:
		delete(payload, "exp")
	case ExpiryRelative:
		payload["exp"] = now.Add(in.ExpiresAfter).Unix()
	}
	if in.IncludeIssuedAt {
		payload["iat"] = now.Unix()
	}

	alg, hasAlg, err := headerAlgorithm(header)
	if err != nil {
		return encodeFailure(FailureAlgorithm, err, nil)
	}
	enc, hasEnc, err := headerEncryption(header)
	if err != nil {
		return encodeFailure(FailureAlgorithm, err, nil)
	}

	var res EncodeResult
	if hasAlg && hasEnc {
		res = encodeEncrypted(ctx, alg, enc, header, payload, in.Keys, deps, log)
	} else {
		res = encodeSigned(ctx, alg, hasAlg, header, payload, in.Keys, deps, log)
	}
	if res.Err != nil {
		return res
	}

	segments := strings.SplitN(res.Token, ".", 2)
	final, err := compact.DecodeHeader(segments[0])
	if err != nil {
		return encodeFailure(FailurePrimitive, fmt.Errorf("decode produced header: %w", err), res.Warnings)
	}
	res.Header = final
	res.Payload = payload

	log.Debug("token encoded",
		zap.String("variant", res.Shape.String()),
		zap.String("alg", string(res.Algorithm)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res
}

func encodeEncrypted(
	ctx context.Context,
	alg, enc jwa.Algorithm,
	header, payload map[string]any,
	m keys.Material,
	deps EncodeDeps,
	log *zap.Logger,
) EncodeResult {
	if jwa.FamilyOf(alg) != jwa.FamilyKeyEncryption {
		return encodeFailure(FailureAlgorithm, &jwa.UnknownAlgorithmError{Algorithm: string(alg), Family: jwa.FamilyKeyEncryption}, nil)
	}

	var (
		key      any
		desc     keys.Descriptor
		opts     jwe.Options
		warnings []error
	)
	if jwa.IsPBES2(alg) {
		if m.Password == "" {
			return encodeFailure(FailureKey, &keys.InvalidKeyError{Field: "password", Err: keys.ErrKeyMaterialMissing}, nil)
		}
		iterations, warn := keys.IterationsOrDefault(m.Iterations, orDefault(deps.Iterations))
		if warn != nil {
			warnings = append(warnings, warn)
			log.Warn("iteration count replaced", zap.String("input", warn.Input), zap.Int("used", warn.Used))
		}
		var salt []byte
		if m.Salt == "" {
			s, err := deps.NewSalt(deps.SaltLength)
			if err != nil {
				return encodeFailure(FailurePrimitive, fmt.Errorf("generate salt: %w", err), warnings)
			}
			salt = s
		} else {
			s, err := keys.Decode("salt", m.Salt, m.SaltCoding)
			if err != nil {
				return encodeFailure(FailureKey, err, warnings)
			}
			salt = s
		}
		password := []byte(m.Password)
		key = password
		desc = keys.Describe(password, keys.UsageDerive)
		opts = jwe.Options{PBES2Count: iterations, PBES2Salt: salt}
	} else {
		kid, _ := header["kid"].(string)
		pub, err := deps.Keys.Public(ctx, m, keystore.Hints{KeyID: kid, Algorithm: alg})
		if err != nil {
			return encodeFailure(FailureKey, err, nil)
		}
		key = pub
		desc = keys.Describe(pub, keys.UsageVerify)
	}

	if err := keys.CheckCompatible(alg, desc); err != nil {
		return encodeFailure(FailureCompatibility, err, warnings)
	}

	plaintext, err := compact.Marshal(payload)
	if err != nil {
		return encodeFailure(FailureInput, &compact.MalformedInputError{Segment: "payload", Err: err}, warnings)
	}
	token, err := jwe.Encrypt(alg, enc, header, plaintext, key, opts)
	if err != nil {
		log.Info("encryption failed", zap.String("alg", string(alg)), zap.String("enc", string(enc)), zap.Error(err))
		return encodeFailure(FailurePrimitive, err, warnings)
	}
	return EncodeResult{Token: token, Shape: compact.ShapeEncrypted, Algorithm: alg, Warnings: warnings}
}

func encodeSigned(
	ctx context.Context,
	alg jwa.Algorithm,
	hasAlg bool,
	header, payload map[string]any,
	m keys.Material,
	deps EncodeDeps,
	log *zap.Logger,
) EncodeResult {
	if hasAlg && jwa.FamilyOf(alg) != jwa.FamilySigning {
		return encodeFailure(FailureAlgorithm, &jwa.UnknownAlgorithmError{Algorithm: string(alg), Family: jwa.FamilySigning}, nil)
	}

	kid, _ := header["kid"].(string)
	symmetric := jwa.IsHMAC(alg) || (!hasAlg && m.Secret != "" && m.PrivateKey == "")

	var (
		key      any
		desc     keys.Descriptor
		warnings []error
	)
	if symmetric {
		if !hasAlg {
			alg = deps.ChooseAlgorithm(jwa.HMAC())
		}
		secret, warns, err := deps.Keys.Symmetric(ctx, m, alg, kid)
		if err != nil {
			return encodeFailure(FailureKey, err, nil)
		}
		for _, w := range warns {
			warnings = append(warnings, w)
			log.Warn("iteration count replaced", zap.Error(w))
		}
		key = secret
		desc = keys.Describe(secret, keys.UsageSign)
	} else {
		priv, err := deps.Keys.Private(ctx, m, keystore.Hints{KeyID: kid, Algorithm: alg})
		if err != nil {
			return encodeFailure(FailureKey, err, nil)
		}
		key = priv
		desc = keys.Describe(priv, keys.UsageSign)
		if !hasAlg {
			acceptable := keys.AcceptableSigningAlgorithms(desc)
			if len(acceptable) == 0 {
				return encodeFailure(FailureCompatibility, &keys.IncompatibleAlgorithmError{Algorithm: jwa.None, Descriptor: desc}, nil)
			}
			alg = deps.ChooseAlgorithm(acceptable)
		}
	}

	if err := keys.CheckCompatible(alg, desc); err != nil {
		return encodeFailure(FailureCompatibility, err, warnings)
	}
	if secret, ok := key.([]byte); ok {
		if err := keys.CheckKeyLength(secret, alg); err != nil {
			return encodeFailure(FailureCompatibility, err, warnings)
		}
	}

	token, err := jwt.Sign(alg, header, payload, key)
	if err != nil {
		log.Info("signing failed", zap.String("alg", string(alg)), zap.Error(err))
		return encodeFailure(FailurePrimitive, err, warnings)
	}
	return EncodeResult{Token: token, Shape: compact.ShapeSigned, Algorithm: alg, Warnings: warnings}
}

// headerAlgorithm reads "alg". Present values must be catalog signing or key-encryption
// identifiers.
func headerAlgorithm(header map[string]any) (jwa.Algorithm, bool, error) {
	raw, ok := header["alg"]
	if !ok {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, &jwa.UnknownAlgorithmError{Algorithm: fmt.Sprint(raw)}
	}
	alg, family, known := jwa.Lookup(s)
	if !known || family == jwa.FamilyContentEncryption {
		return "", true, &jwa.UnknownAlgorithmError{Algorithm: s}
	}
	return alg, true, nil
}

func headerEncryption(header map[string]any) (jwa.Algorithm, bool, error) {
	raw, ok := header["enc"]
	if !ok {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, &jwa.UnknownAlgorithmError{Algorithm: fmt.Sprint(raw), Family: jwa.FamilyContentEncryption}
	}
	enc, err := jwa.Parse(s, jwa.FamilyContentEncryption)
	if err != nil {
		return "", true, err
	}
	return enc, true, nil
}
