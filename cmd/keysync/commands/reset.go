package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every locally stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete credentials without --yes")
			}
			if err := wire.Credentials.ClearAll(); err != nil {
				return err
			}
			fmt.Println("Local credentials deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
