package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrEthical07/goJWT/keys"
)

func newKeySetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyset",
		Short: "Store or remove named JWKS key sets in Redis",
	}

	put := &cobra.Command{
		Use:   "put NAME",
		Short: "Store a JWKS document under NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			text, err := a.readText(file)
			if err != nil {
				return err
			}
			set, err := keys.ParseJWKS("file", text)
			if err != nil {
				return err
			}

			e, release, err := a.engine(cmd)
			if err != nil {
				return err
			}
			defer release()

			if err := e.PutKeySet(cmd.Context(), args[0], set); err != nil {
				return err
			}
			a.logger.Info("key set stored", zap.String("name", args[0]), zap.Int("keys", len(set.Keys)))
			return nil
		},
	}
	put.Flags().String("file", "-", "JWKS document, @file or - for stdin")

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove the key set stored under NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, release, err := a.engine(cmd)
			if err != nil {
				return err
			}
			defer release()

			if err := e.DeleteKeySet(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info("key set deleted", zap.String("name", args[0]))
			return nil
		},
	}

	cmd.AddCommand(put, del)
	return cmd
}
