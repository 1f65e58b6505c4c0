package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keysync/internal/domain"
)

func initCmd() *cobra.Command {
	var noSync bool
	cmd := &cobra.Command{
		Use:   "init [username]",
		Short: "Provision this device for a user and publish its keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			opts := domain.InitializeOptions{
				GenerateKeysIfAbsent: cfg.Directory.GenerateKeys,
				AutoSync:             cfg.Directory.AutoSync && !noSync,
			}
			err := wire.Instance.Initialize(cmd.Context(), domain.UserID(args[0]), opts)
			if err != nil {
				return err
			}
			info := wire.Instance.Info()
			fmt.Printf("Initialized %s as device %s\n", info.UserID, info.DeviceID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "do not publish keys or watch the directory")
	return cmd
}
