package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Replace the identity key pair and republish keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureReady(cmd); err != nil {
				return err
			}
			if _, err := wire.Identity.RotateIdentity(); err != nil {
				return err
			}
			if err := wire.PreKeys.EnsurePreKeys(10); err != nil {
				return err
			}
			outcome, err := wire.Instance.PublishKeys(cmd.Context())
			if err != nil {
				return err
			}
			fp, err := wire.Identity.FingerprintIdentity()
			if err != nil {
				return err
			}
			fmt.Printf("Identity rotated (%s). Publish: %s\n", fp, outcome)
			return nil
		},
	}
}
