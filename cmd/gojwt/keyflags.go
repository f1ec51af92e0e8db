package main

import (
	"github.com/spf13/cobra"

	goJWT "github.com/MrEthical07/goJWT"
)

const (
	secretFlagName = "secret"
	secretEnvKey   = "GOJWT_SECRET" // nolint:gosec
	passwordName   = "password"
	passwordEnvKey = "GOJWT_PASSWORD" // nolint:gosec

	secretCodingFlagName = "secret-coding"
	saltFlagName         = "salt"
	saltCodingFlagName   = "salt-coding"
	iterationsName       = "iterations"
	privateKeyFlagName   = "private-key"
	publicKeyFlagName    = "public-key"
	keySetFlagName       = "key-set"
)

func addKeyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(secretFlagName, "", "HMAC secret text. Alternatively, this can be set with the following environment variable: "+secretEnvKey)
	f.String(secretCodingFlagName, "utf-8", "How the secret text is read: utf-8, base64, hex or pbkdf2")
	f.String(passwordName, "", "PBES2 password. Alternatively, this can be set with the following environment variable: "+passwordEnvKey)
	f.String(saltFlagName, "", "PBKDF2 salt text. PBES2 encoding generates one when empty")
	f.String(saltCodingFlagName, "utf-8", "How the salt text is read: utf-8, base64 or hex")
	f.String(iterationsName, "", "PBKDF2 iteration count")
	f.String(privateKeyFlagName, "", "Private key as PEM or JWKS text, @file or - for stdin")
	f.String(publicKeyFlagName, "", "Public key as PEM or JWKS text, @file or - for stdin")
	f.String(keySetFlagName, "", "Name of a key set stored in Redis")
}

func (a *app) keyMaterial(cmd *cobra.Command) (goJWT.KeyMaterial, error) {
	var (
		km  goJWT.KeyMaterial
		err error
	)
	if km.Secret, err = getUserSetVar(cmd, secretFlagName, secretEnvKey, true); err != nil {
		return km, err
	}
	if km.Password, err = getUserSetVar(cmd, passwordName, passwordEnvKey, true); err != nil {
		return km, err
	}

	f := cmd.Flags()
	secretCoding, _ := f.GetString(secretCodingFlagName)
	saltCoding, _ := f.GetString(saltCodingFlagName)
	km.SecretCoding = goJWT.Coding(secretCoding)
	km.SaltCoding = goJWT.Coding(saltCoding)
	km.Salt, _ = f.GetString(saltFlagName)
	km.Iterations, _ = f.GetString(iterationsName)
	km.KeySet, _ = f.GetString(keySetFlagName)

	priv, _ := f.GetString(privateKeyFlagName)
	if km.PrivateKey, err = a.readText(priv); err != nil {
		return km, err
	}
	pub, _ := f.GetString(publicKeyFlagName)
	if km.PublicKey, err = a.readText(pub); err != nil {
		return km, err
	}
	return km, nil
}
