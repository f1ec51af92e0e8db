package keys

// Material is the raw key input of one operation, exactly as a host collected it.
// Which fields are read depends on the algorithm family:
//
//   - HMAC signing reads Secret, SecretCoding and, for pbkdf2, Salt, SaltCoding and
//     Iterations.
//   - PBES2 key encryption reads Password, Salt, SaltCoding and Iterations.
//   - RSA and EC algorithms read PrivateKey and PublicKey, each holding PEM or JWKS text.
//
// KeySet names a stored key set and takes precedence over PrivateKey and PublicKey.
type Material struct {
	Secret       string
	SecretCoding Coding
	Salt         string
	SaltCoding   Coding
	Iterations   string
	PrivateKey   string
	PublicKey    string
	Password     string
	KeySet       string
}

// SymmetricInput returns the secret fields as a [SymmetricInput].
func (m Material) SymmetricInput() SymmetricInput {
	return SymmetricInput{
		Text:       m.Secret,
		Coding:     m.SecretCoding,
		Salt:       m.Salt,
		SaltCoding: m.SaltCoding,
		Iterations: m.Iterations,
	}
}
