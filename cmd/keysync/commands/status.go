package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print local instance state and queued directory writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			info := wire.Instance.Info()
			pending, err := wire.Directory.PendingOperations()
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(struct {
				UserID   string `json:"user_id"`
				DeviceID string `json:"device_id"`
				HasKeys  bool   `json:"has_keys"`
				Pending  int    `json:"pending_writes"`
			}{
				UserID:   info.UserID.String(),
				DeviceID: info.DeviceID.String(),
				HasKeys:  info.HasKeys,
				Pending:  len(pending),
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
