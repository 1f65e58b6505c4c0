package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keysync/internal/domain"
)

func hasKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "haskeys [username]",
		Short: "Check whether a user has published keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureReady(cmd); err != nil {
				return err
			}
			has, err := wire.Instance.HasKeysForUser(cmd.Context(), domain.UserID(args[0]))
			if err != nil {
				return err
			}
			if has {
				fmt.Printf("%s has published keys\n", args[0])
			} else {
				fmt.Printf("%s has no published keys\n", args[0])
			}
			return nil
		},
	}
}
