package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/internal/report"
)

// errInvalidToken makes the process exit non-zero for tokens with violations.
var errInvalidToken = errors.New("token has validity violations")

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Verify or decrypt a token and check its validity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokenArg, _ := cmd.Flags().GetString("token")
			strict, _ := cmd.Flags().GetBool("strict")

			token, err := a.readText(tokenArg)
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

			res, err := e.Decode(cmd.Context(), goJWT.DecodeRequest{Token: strings.TrimSpace(token), Keys: km})
			if err != nil {
				_ = a.printJSON(report.FromError(err))
				return err
			}
			if err := a.printJSON(report.FromDecode(res)); err != nil {
				return err
			}
			if strict && !res.Valid() {
				return errInvalidToken
			}
			return nil
		},
	}
	cmd.Flags().String("token", "-", "Compact token, @file or - for stdin")
	cmd.Flags().Bool("strict", false, "Exit non-zero when the token has violations")
	addKeyFlags(cmd)
	return cmd
}
