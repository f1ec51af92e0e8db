package keys

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goJWT/jwa"
)

var (
	// ErrIncompatibleAlgorithm is returned when an algorithm is not in the key's acceptable set.
	ErrIncompatibleAlgorithm = errors.New("algorithm incompatible with key")
	// ErrInsufficientKeyLength is returned when a symmetric key is shorter than the algorithm requires.
	ErrInsufficientKeyLength = errors.New("insufficient key length")
	// ErrUnsupportedKeyEncoding is returned for a coding outside utf-8, base64, hex, pbkdf2.
	ErrUnsupportedKeyEncoding = errors.New("unsupported key encoding")
	// ErrIterationCountOutOfRange marks a substituted PBKDF2 iteration count. It is a warning.
	ErrIterationCountOutOfRange = errors.New("iteration count out of range")
	// ErrKeyMaterialMissing is returned when the field needed by the operation is empty.
	ErrKeyMaterialMissing = errors.New("key material missing")
	// ErrInvalidKey is returned when key text cannot be parsed into a usable key.
	ErrInvalidKey = errors.New("invalid key")
)

// IncompatibleAlgorithmError carries the requested algorithm and the key it was checked against.
type IncompatibleAlgorithmError struct {
	Algorithm  jwa.Algorithm
	Descriptor Descriptor
}

func (e *IncompatibleAlgorithmError) Error() string {
	return fmt.Sprintf("algorithm %s cannot be used with a %s key of %d bits; generate or supply a fresh key for this algorithm",
		e.Algorithm, e.Descriptor.Kind, e.Descriptor.BitLength)
}

func (e *IncompatibleAlgorithmError) Unwrap() error {
	return ErrIncompatibleAlgorithm
}

// InsufficientKeyLengthError reports sizes in bytes.
type InsufficientKeyLengthError struct {
	Algorithm jwa.Algorithm
	Required  int
	Provided  int
}

func (e *InsufficientKeyLengthError) Error() string {
	return fmt.Sprintf("%s requires a key of at least %d bytes, got %d", e.Algorithm, e.Required, e.Provided)
}

func (e *InsufficientKeyLengthError) Unwrap() error {
	return ErrInsufficientKeyLength
}

// UnsupportedKeyEncodingError names the rejected coding and the field it was declared for.
type UnsupportedKeyEncodingError struct {
	Field  string
	Coding string
}

func (e *UnsupportedKeyEncodingError) Error() string {
	return fmt.Sprintf("%s: unsupported encoding %q", e.Field, e.Coding)
}

func (e *UnsupportedKeyEncodingError) Unwrap() error {
	return ErrUnsupportedKeyEncoding
}

// IterationCountWarning is returned alongside a usable default iteration count.
type IterationCountWarning struct {
	Input string
	Used  int
}

func (w *IterationCountWarning) Error() string {
	return fmt.Sprintf("iteration count %q is not an integer in [%d, %d); using %d",
		w.Input, MinIterations, MaxIterations, w.Used)
}

func (w *IterationCountWarning) Unwrap() error {
	return ErrIterationCountOutOfRange
}

// InvalidKeyError wraps a parser failure for a named key field.
type InvalidKeyError struct {
	Field string
	Err   error
}

func (e *InvalidKeyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: invalid key", e.Field)
	}
	return fmt.Sprintf("%s: invalid key: %v", e.Field, e.Err)
}

func (e *InvalidKeyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidKey}
	}
	return []error{ErrInvalidKey, e.Err}
}
