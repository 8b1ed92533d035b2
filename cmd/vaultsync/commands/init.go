package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultsync/internal/crypto"
	"vaultsync/internal/domain"
)

var initAdmin bool

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate local keys; with --admin, bootstrap a new group",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if err := appCtx.InitKeys(passphrase); err != nil {
				return err
			}
			keys := appCtx.Keys

			if initAdmin {
				admin := domain.AdminKeySet{
					SigningPub:    keys.SigningPub,
					EncryptionPub: keys.EncryptionPub,
				}
				if err := appCtx.Registry.SetAdminKeys(admin); err != nil {
					return err
				}
				id, err := appCtx.Registry.AddUser(keys.SigningPub, keys.EncryptionPub,
					[]domain.Role{domain.RoleUser, domain.RoleAdmin})
				if err != nil {
					return err
				}
				if err := appCtx.SaveSelf(id); err != nil {
					return err
				}
				appCtx.Config.SetAdminKeys(admin)
				if err := appCtx.Config.Save(); err != nil {
					return err
				}
				if err := publishRegistry(); err != nil {
					return err
				}
				fmt.Printf("Group created. You are user %d (administrator).\n", id)
			} else {
				fmt.Println("Keys created. Run 'vaultsync request' to ask the administrator to register you.")
			}

			fmt.Printf("Signing key:    %s\n", crypto.Fingerprint(keys.SigningPub.Slice()))
			fmt.Printf("Encryption key: %s\n", crypto.Fingerprint(keys.EncryptionPub.Slice()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&initAdmin, "admin", false, "bootstrap a new group with this machine as administrator")
	return cmd
}
