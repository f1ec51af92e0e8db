package main

import (
	"github.com/spf13/cobra"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/internal/report"
)

func newEncodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Sign or encrypt a token",
		Long: `Sign or encrypt a token from a JSON header and payload.

A header with both "alg" and "enc" produces an encrypted token. Anything else
produces a signed token; a missing "alg" is chosen from the key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			headerArg, _ := f.GetString("header")
			payloadArg, _ := f.GetString("payload")
			expiryArg, _ := f.GetString("expiry")
			iat, _ := f.GetBool("iat")

			header, err := a.readText(headerArg)
			if err != nil {
				return err
			}
			payload, err := a.readText(payloadArg)
			if err != nil {
				return err
			}
			expiry, err := goJWT.ParseExpiry(expiryArg)
			if err != nil {
				return err
			}
			km, err := a.keyMaterial(cmd)
			if err != nil {
				return err
			}

			e, release, err := a.engine(cmd)
			if err != nil {
				return err
			}
			defer release()

			res, err := e.Encode(cmd.Context(), goJWT.EncodeRequest{
				Header:          header,
				Payload:         payload,
				Expiry:          expiry,
				IncludeIssuedAt: iat,
				Keys:            km,
			})
			if err != nil {
				_ = a.printJSON(report.FromError(err))
				return err
			}
			return a.printJSON(report.FromEncode(res))
		},
	}
	cmd.Flags().String("header", `{"alg":"HS256"}`, "Header JSON, @file or - for stdin")
	cmd.Flags().String("payload", "{}", "Payload JSON, @file or - for stdin")
	cmd.Flags().String("expiry", "keep", `"keep", "none", or a relative expiry such as 90s or 10m`)
	cmd.Flags().Bool("iat", false, "Set iat to the current time")
	addKeyFlags(cmd)
	return cmd
}
