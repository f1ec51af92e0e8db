package flows

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goJWT/internal/compact"
	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/jwe"
	"github.com/MrEthical07/goJWT/jwt"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/MrEthical07/goJWT/keystore"
	"github.com/MrEthical07/goJWT/validity"
)

// DecodeInput is one decode request.
type DecodeInput struct {
	Token string
	Keys  keys.Material
}

// Derivation reports the PBES2 parameters of a token. jwe.Decrypt reads p2c and p2s
// from the header only; request values fill gaps for reporting and never reach
// decryption.
type Derivation struct {
	Iterations int
	Salt       []byte
	// FromHeader is true when both values were read from the token header.
	FromHeader bool
}

// DecodeResult carries the decoded token or failure metadata.
type DecodeResult struct {
	Failure    FailureKind
	Err        error
	Header     map[string]any
	Payload    map[string]any
	Shape      compact.Shape
	Algorithm  jwa.Algorithm
	Violations []validity.Violation
	Warnings   []error
	Derivation *Derivation
}

// DecodeDeps captures decode dependencies.
type DecodeDeps struct {
	Now        func() time.Time
	Iterations int
	Keys       KeyResolver
	Logger     *zap.Logger
}

func decodeFailure(kind FailureKind, err error) DecodeResult {
	return DecodeResult{Failure: kind, Err: err}
}

// RunDecode classifies, verifies or decrypts, and checks the validity of a token.
// Verification and decryption failures are errors; validity problems are not.
func RunDecode(ctx context.Context, in DecodeInput, deps DecodeDeps) DecodeResult {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	shape, parts, err := compact.Classify(in.Token)
	if err != nil {
		return decodeFailure(FailureShape, err)
	}
	header, err := compact.DecodeHeader(parts[0])
	if err != nil {
		return decodeFailure(FailureShape, err)
	}

	alg, hasAlg, err := headerAlgorithm(header)
	if err != nil {
		return decodeFailure(FailureAlgorithm, err)
	}
	_, hasEnc, err := headerEncryption(header)
	if err != nil {
		return decodeFailure(FailureAlgorithm, err)
	}

	var res DecodeResult
	if shape == compact.ShapeEncrypted {
		res = decodeEncrypted(ctx, in, header, alg, hasAlg, hasEnc, deps, log)
	} else {
		res = decodeSigned(ctx, in, header, alg, hasAlg, deps, log)
	}
	if res.Err != nil {
		return res
	}
	res.Header = header
	res.Shape = shape
	res.Algorithm = alg

	log.Debug("token decoded",
		zap.String("variant", shape.String()),
		zap.String("alg", string(alg)),
		zap.Int("violations", len(res.Violations)),
	)
	return res
}

func decodeSigned(
	ctx context.Context,
	in DecodeInput,
	header map[string]any,
	alg jwa.Algorithm,
	hasAlg bool,
	deps DecodeDeps,
	log *zap.Logger,
) DecodeResult {
	if !hasAlg {
		return decodeFailure(FailureVerification, &jwt.VerificationFailedError{Err: errors.New(`missing "alg" header parameter`)})
	}
	if jwa.FamilyOf(alg) != jwa.FamilySigning {
		return decodeFailure(FailureAlgorithm, &jwa.UnknownAlgorithmError{Algorithm: string(alg), Family: jwa.FamilySigning})
	}

	kid, _ := header["kid"].(string)
	var (
		key      any
		warnings []error
	)
	if jwa.IsHMAC(alg) {
		secret, warns, err := deps.Keys.Symmetric(ctx, in.Keys, alg, kid)
		if err != nil {
			return decodeFailure(FailureKey, err)
		}
		for _, w := range warns {
			log.Warn("iteration count replaced", zap.Error(w))
		}
		warnings = warns
		if err := keys.CheckKeyLength(secret, alg); err != nil {
			return decodeFailure(FailureCompatibility, err)
		}
		key = secret
	} else {
		pub, err := deps.Keys.Public(ctx, in.Keys, keystore.Hints{KeyID: kid, Algorithm: alg})
		if err != nil {
			return decodeFailure(FailureKey, err)
		}
		key = pub
	}

	claims, err := jwt.Verify(in.Token, alg, key)
	if err != nil {
		log.Info("verification failed", zap.String("alg", string(alg)), zap.Error(err))
		return DecodeResult{Failure: FailureVerification, Err: err, Warnings: warnings}
	}

	acceptable := keys.AcceptableSigningAlgorithms(keys.Describe(key, keys.UsageVerify))
	return DecodeResult{
		Payload:    claims,
		Violations: validity.Check(header, claims, acceptable, deps.Now()),
		Warnings:   warnings,
	}
}

func decodeEncrypted(
	ctx context.Context,
	in DecodeInput,
	header map[string]any,
	alg jwa.Algorithm,
	hasAlg, hasEnc bool,
	deps DecodeDeps,
	log *zap.Logger,
) DecodeResult {
	if !hasAlg || !hasEnc {
		return decodeFailure(FailureDecryption, &jwe.DecryptionFailedError{
			Algorithm: alg,
			Err:       errors.New(`encrypted token header needs both "alg" and "enc"`),
		})
	}
	if jwa.FamilyOf(alg) != jwa.FamilyKeyEncryption {
		return decodeFailure(FailureAlgorithm, &jwa.UnknownAlgorithmError{Algorithm: string(alg), Family: jwa.FamilyKeyEncryption})
	}

	var (
		key        any
		warnings   []error
		derivation *Derivation
	)
	if jwa.IsPBES2(alg) {
		if in.Keys.Password == "" {
			return decodeFailure(FailureKey, &keys.InvalidKeyError{Field: "password", Err: keys.ErrKeyMaterialMissing})
		}
		d, warns, err := pbes2Derivation(header, in.Keys, orDefault(deps.Iterations))
		if err != nil {
			return decodeFailure(FailureKey, err)
		}
		for _, w := range warns {
			log.Warn("iteration count replaced", zap.Error(w))
		}
		warnings = warns
		derivation = d
		key = []byte(in.Keys.Password)
	} else {
		kid, _ := header["kid"].(string)
		priv, err := deps.Keys.Private(ctx, in.Keys, keystore.Hints{KeyID: kid, Algorithm: alg})
		if err != nil {
			return decodeFailure(FailureKey, err)
		}
		key = priv
	}

	plaintext, err := jwe.Decrypt(in.Token, alg, key)
	if err != nil {
		log.Info("decryption failed", zap.String("alg", string(alg)), zap.Error(err))
		return DecodeResult{Failure: FailureDecryption, Err: err, Warnings: warnings, Derivation: derivation}
	}
	payload, err := compact.ParseObject("payload", plaintext)
	if err != nil {
		return DecodeResult{Failure: FailureInput, Err: err, Warnings: warnings, Derivation: derivation}
	}

	acceptable := keys.AcceptableEncryptionAlgorithms(keys.Describe(key, keys.UsageDerive))
	return DecodeResult{
		Payload:    payload,
		Violations: validity.Check(header, payload, acceptable, deps.Now()),
		Warnings:   warnings,
		Derivation: derivation,
	}
}

// pbes2Derivation prefers p2c and p2s from the header and falls back to the request
// values for whichever is absent. The result is informational.
func pbes2Derivation(header map[string]any, m keys.Material, def int) (*Derivation, []error, error) {
	d := &Derivation{}
	var warnings []error

	p2c, hasCount := header["p2c"].(json.Number)
	if hasCount {
		n, err := p2c.Int64()
		if err != nil {
			return nil, nil, &keys.InvalidKeyError{Field: "p2c", Err: err}
		}
		d.Iterations = int(n)
	} else {
		n, warn := keys.IterationsOrDefault(m.Iterations, def)
		if warn != nil {
			warnings = append(warnings, warn)
		}
		d.Iterations = n
	}

	p2s, hasSalt := header["p2s"].(string)
	if hasSalt {
		salt, err := compact.DecodeSegment(p2s)
		if err != nil {
			return nil, nil, &keys.InvalidKeyError{Field: "p2s", Err: err}
		}
		d.Salt = salt
	} else if m.Salt != "" {
		salt, err := keys.Decode("salt", m.Salt, m.SaltCoding)
		if err != nil {
			return nil, nil, err
		}
		d.Salt = salt
	}

	d.FromHeader = hasCount && hasSalt
	return d, warnings, nil
}
