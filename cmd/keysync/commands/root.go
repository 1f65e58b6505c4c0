package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"keysync/internal/app"
	"keysync/internal/config"
	"keysync/internal/domain"
	"keysync/internal/logging"
)

var (
	home       string
	passphrase string
	dirURL     string
	logFile    string
	debugLevel string

	cfg     config.Config
	wire    *app.Wire
	logBknd *logging.Backend
)

func Execute() error {
	root := &cobra.Command{
		Use:   "keysync",
		Short: "Key lifecycle CLI for end-to-end encrypted messaging",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".keysync")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			var err error
			cfg, err = config.Load(home)
			if err != nil {
				return err
			}
			// Flags beat the file.
			if dirURL != "" {
				cfg.Directory.URL = dirURL
			}
			if logFile != "" {
				cfg.Log.File = logFile
			}
			if debugLevel != "" {
				cfg.Log.Level = debugLevel
			}

			logBknd, err = logging.NewBackend(cfg.Log.File, cfg.Log.Level, os.Stderr)
			if err != nil {
				return err
			}

			wire, err = app.NewWire(app.Config{
				Home:         home,
				DirectoryURL: cfg.Directory.URL,
				Passphrase:   passphrase,
				Log:          logBknd,
			})
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if wire != nil {
				wire.Instance.Dispose()
			}
			if logBknd != nil {
				logBknd.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.keysync)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the credential vault")
	root.PersistentFlags().StringVar(&dirURL, "directory", "", "key directory base URL (e.g. https://keys.example.org)")
	root.PersistentFlags().StringVar(&logFile, "logfile", "", "log to this file in addition to stderr")
	root.PersistentFlags().StringVar(&debugLevel, "debuglevel", "", "log level, or subsys=level pairs (default info)")

	root.AddCommand(initCmd(), publishCmd(), hasKeysCmd(), statusCmd(),
		watchCmd(), fingerprintCmd(), rotateCmd(), resetCmd())
	return root.Execute()
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}

// ensureReady brings the instance to ready from already persisted
// credentials. It never generates new material.
func ensureReady(cmd *cobra.Command) error {
	if err := requirePassphrase(); err != nil {
		return err
	}
	dev, ok, err := wire.Credentials.DeviceIdentity()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no local identity; run keysync init first")
	}
	return wire.Instance.Initialize(cmd.Context(), dev.UserID, domain.InitializeOptions{})
}
