package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vaultsync/internal/app"
	"vaultsync/internal/domain"
)

var (
	home       string
	passphrase string
	appCtx     *app.Context
)

func Execute() error {
	root := &cobra.Command{
		Use:   "vaultsync",
		Short: "Replicated encrypted storage with a signed user registry",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".vaultsync")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			appCtx, err = app.New(cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appCtx != nil {
				appCtx.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.vaultsync)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the local keys")

	root.AddCommand(initCmd(), requestCmd(), reviewCmd(), completeCmd(),
		syncCmd(), usersCmd(), roleCmd(), removeCmd(), fingerprintCmd())
	return root.Execute()
}

// unlock opens the session for commands that need key material.
func unlock() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return appCtx.Unlock(passphrase)
}

// publishRegistry persists the registry after an administrator mutation:
// the private mirror always, the shared snapshot when a shared location is
// configured.
func publishRegistry() error {
	if err := appCtx.SaveRegistry(); err != nil {
		return err
	}
	sec := appCtx.SecureShared()
	if sec == nil {
		return nil
	}
	snap, err := appCtx.Registry.Snapshot()
	if err != nil {
		return err
	}
	if _, err := sec.Put(domain.RegistryKey, snap); err != nil {
		return err
	}
	return nil
}
