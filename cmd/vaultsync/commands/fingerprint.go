package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultsync/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print this participant's public key fingerprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := unlock(); err != nil {
				return err
			}
			fmt.Printf("Signing key:    %s\n", crypto.Fingerprint(appCtx.Keys.SigningPub.Slice()))
			fmt.Printf("Encryption key: %s\n", crypto.Fingerprint(appCtx.Keys.EncryptionPub.Slice()))
			return nil
		},
	}
}
