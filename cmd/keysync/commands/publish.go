package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keysync/internal/domain"
)

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish the current key bundle to the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureReady(cmd); err != nil {
				return err
			}
			outcome, err := wire.Instance.PublishKeys(cmd.Context())
			if err != nil {
				return err
			}
			if outcome == domain.UploadQueued {
				fmt.Println("Directory unreachable; publish queued for the next sync")
				return nil
			}
			fmt.Println("Keys published")
			return nil
		},
	}
}
