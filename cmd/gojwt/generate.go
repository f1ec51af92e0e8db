package main

import (
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/generate"
	"github.com/MrEthical07/goJWT/jwa"
)

type generated struct {
	Header       map[string]any `json:"header"`
	Payload      map[string]any `json:"payload"`
	Secret       string         `json:"secret,omitempty"`
	SecretCoding string         `json:"secretCoding,omitempty"`
	Password     string         `json:"password,omitempty"`
	PrivateKey   string         `json:"privateKey,omitempty"`
	PublicKey    string         `json:"publicKey,omitempty"`
}

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a sample header, payload and key material for an algorithm",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			algArg, _ := f.GetString("alg")
			coding, _ := f.GetString(secretCodingFlagName)
			seed, _ := f.GetUint64("seed")
			if !f.Changed("seed") {
				seed = rand.Uint64()
			}

			alg, _, ok := jwa.Lookup(algArg)
			if !ok || jwa.FamilyOf(alg) == jwa.FamilyContentEncryption {
				return &jwa.UnknownAlgorithmError{Algorithm: algArg}
			}

			g := generate.New(seed)
			km, err := g.Keys(alg, goJWT.Coding(coding))
			if err != nil {
				return err
			}
			a.logger.Debug("sample generated", zap.String("alg", string(alg)), zap.Uint64("seed", seed))
			return a.printJSON(generated{
				Header:       g.Header(alg),
				Payload:      g.Payload(time.Now()),
				Secret:       km.Secret,
				SecretCoding: string(km.SecretCoding),
				Password:     km.Password,
				PrivateKey:   km.PrivateKey,
				PublicKey:    km.PublicKey,
			})
		},
	}
	cmd.Flags().String("alg", "HS256", "Signing or key-encryption algorithm")
	cmd.Flags().String(secretCodingFlagName, "utf-8", "Coding of generated HMAC secrets: utf-8, base64 or hex")
	cmd.Flags().Uint64("seed", 0, "Generator seed. Random when not set")
	return cmd
}
