package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"keysync/internal/domain"
	"keysync/internal/validate"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [username]",
		Short: "Stream directory updates for a user until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.UserID(args[0]); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ch, err := wire.Directory.WatchUser(ctx, domain.UserID(args[0]))
			if err != nil {
				return err
			}
			for msg := range ch {
				fmt.Println(string(msg))
			}
			return nil
		},
	}
}
