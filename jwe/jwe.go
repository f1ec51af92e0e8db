package jwe

import (
	"encoding/json"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/MrEthical07/goJWT/jwa"
)

var (
	// ErrDecryptionFailed is the sentinel wrapped by [DecryptionFailedError].
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrUnsupportedCompression is returned for a "zip" value other than "DEF".
	ErrUnsupportedCompression = errors.New("unsupported compression algorithm")
)

// DecryptionFailedError carries the primitive error returned while decrypting a token.
type DecryptionFailedError struct {
	Algorithm jwa.Algorithm
	Err       error
}

func (e *DecryptionFailedError) Error() string {
	return fmt.Sprintf("decryption failed (%s): %v", e.Algorithm, e.Err)
}

func (e *DecryptionFailedError) Unwrap() []error {
	return []error{ErrDecryptionFailed, e.Err}
}

// reserved header members are produced by the encrypter and never copied from input.
var reserved = map[string]struct{}{
	"alg": {},
	"enc": {},
	"zip": {},
	"p2c": {},
	"p2s": {},
	"epk": {},
	"apu": {},
	"apv": {},
}

// Options tune a single encryption.
type Options struct {
	// PBES2Count and PBES2Salt are used only with PBES2 key encryption.
	PBES2Count int
	PBES2Salt  []byte
}

// Encrypt produces a compact JWE of plaintext. Members of header other than the ones the
// encrypter owns (alg, enc, zip, p2c, p2s, epk, apu, apv) are copied into the protected
// header unchanged. A "zip" member of "DEF" enables DEFLATE compression. The key is
// used by value, so no kid is added.
func Encrypt(alg, enc jwa.Algorithm, header map[string]any, plaintext []byte, key any, opts Options) (string, error) {
	if jwa.FamilyOf(alg) != jwa.FamilyKeyEncryption {
		return "", &jwa.UnknownAlgorithmError{Algorithm: string(alg), Family: jwa.FamilyKeyEncryption}
	}
	if jwa.FamilyOf(enc) != jwa.FamilyContentEncryption {
		return "", &jwa.UnknownAlgorithmError{Algorithm: string(enc), Family: jwa.FamilyContentEncryption}
	}

	encOpts := &jose.EncrypterOptions{ExtraHeaders: make(map[jose.HeaderKey]interface{}, len(header))}
	for k, v := range header {
		if _, skip := reserved[k]; skip {
			continue
		}
		encOpts.ExtraHeaders[jose.HeaderKey(k)] = plainJSON(v)
	}
	if zip, ok := header["zip"]; ok {
		if zip != string(jose.DEFLATE) {
			return "", fmt.Errorf("%w: %v", ErrUnsupportedCompression, zip)
		}
		encOpts.Compression = jose.DEFLATE
	}

	recipient := jose.Recipient{
		Algorithm: jose.KeyAlgorithm(alg),
		Key:       key,
	}
	if jwa.IsPBES2(alg) {
		recipient.PBES2Count = opts.PBES2Count
		recipient.PBES2Salt = opts.PBES2Salt
	}

	encrypter, err := jose.NewEncrypter(jose.ContentEncryption(enc), recipient, encOpts)
	if err != nil {
		return "", fmt.Errorf("encrypt %s/%s: %w", alg, enc, err)
	}
	obj, err := encrypter.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("encrypt %s/%s: %w", alg, enc, err)
	}
	return obj.CompactSerialize()
}

// plainJSON replaces json.Number values, at any depth, with int64 or float64.
// go-jose marshals extra headers with its own json fork, which writes a
// json.Number as a string.
func plainJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plainJSON(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainJSON(e)
		}
		return out
	default:
		return v
	}
}

// Decrypt parses a compact JWE and decrypts it with key. For PBES2 the key is the
// password bytes; the iteration count and salt are read from the token header.
func Decrypt(token string, alg jwa.Algorithm, key any) ([]byte, error) {
	obj, err := jose.ParseEncrypted(token)
	if err != nil {
		return nil, &DecryptionFailedError{Algorithm: alg, Err: err}
	}
	plaintext, err := obj.Decrypt(key)
	if err != nil {
		return nil, &DecryptionFailedError{Algorithm: alg, Err: err}
	}
	return plaintext, nil
}
