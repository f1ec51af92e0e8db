package goJWT

import (
	"errors"

	"github.com/MrEthical07/goJWT/internal/compact"
	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/jwe"
	"github.com/MrEthical07/goJWT/jwt"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/MrEthical07/goJWT/keystore"
)

// Sentinel errors. Each is the same value the owning package returns, so errors.Is
// works whether a caller imports goJWT or the leaf package.
var (
	// ErrMalformedInput is returned when the header or payload text is not a JSON object.
	ErrMalformedInput = compact.ErrMalformedInput
	// ErrNotAToken is returned when a string is neither a compact JWS nor a compact JWE.
	ErrNotAToken = compact.ErrNotAToken
	// ErrMalformedHeader is returned when a token's first segment is not a base64url JSON object.
	ErrMalformedHeader = compact.ErrMalformedHeader
	// ErrUnknownAlgorithm is returned for an alg or enc value outside the catalog.
	ErrUnknownAlgorithm = jwa.ErrUnknownAlgorithm
	// ErrIncompatibleAlgorithm is returned when the key cannot be used with the algorithm.
	ErrIncompatibleAlgorithm = keys.ErrIncompatibleAlgorithm
	// ErrInsufficientKeyLength is returned when an HMAC secret is shorter than the hash output.
	ErrInsufficientKeyLength = keys.ErrInsufficientKeyLength
	// ErrUnsupportedKeyEncoding is returned for a secret coding the resolver does not know.
	ErrUnsupportedKeyEncoding = keys.ErrUnsupportedKeyEncoding
	// ErrIterationCountOutOfRange marks the warning issued when a PBKDF2 count was replaced.
	ErrIterationCountOutOfRange = keys.ErrIterationCountOutOfRange
	// ErrKeyMaterialMissing is returned when the field an algorithm needs is empty.
	ErrKeyMaterialMissing = keys.ErrKeyMaterialMissing
	// ErrInvalidKey is returned when key text cannot be parsed.
	ErrInvalidKey = keys.ErrInvalidKey
	// ErrKeyNotFound is returned when no key in a JWKS or named set matches the hints.
	ErrKeyNotFound = keystore.ErrKeyNotFound
	// ErrKeySetNotFound is returned when a named key set does not exist.
	ErrKeySetNotFound = keystore.ErrSetNotFound
	// ErrKeySetUnavailable is returned when the key set repository cannot be reached.
	ErrKeySetUnavailable = keystore.ErrRepositoryUnavailable
	// ErrVerificationFailed is returned when a JWS signature does not verify.
	ErrVerificationFailed = jwt.ErrVerificationFailed
	// ErrDecryptionFailed is returned when a JWE cannot be decrypted.
	ErrDecryptionFailed = jwe.ErrDecryptionFailed
	// ErrEngineNotReady is returned by methods called on a nil or closed Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrNoKeyRepository is returned by key set methods on an engine built without
	// a key set repository.
	ErrNoKeyRepository = errors.New("no key set repository configured")
)

type (
	MalformedInputError         = compact.MalformedInputError
	MalformedHeaderError        = compact.MalformedHeaderError
	UnknownAlgorithmError       = jwa.UnknownAlgorithmError
	IncompatibleAlgorithmError  = keys.IncompatibleAlgorithmError
	InsufficientKeyLengthError  = keys.InsufficientKeyLengthError
	UnsupportedKeyEncodingError = keys.UnsupportedKeyEncodingError
	IterationCountWarning       = keys.IterationCountWarning
	InvalidKeyError             = keys.InvalidKeyError
	VerificationFailedError     = jwt.VerificationFailedError
	DecryptionFailedError       = jwe.DecryptionFailedError
)
