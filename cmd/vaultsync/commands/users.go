package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultsync/internal/crypto"
)

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := unlock(); err != nil {
				return err
			}
			ids := appCtx.Registry.Users("")
			if len(ids) == 0 {
				fmt.Println("No users registered.")
				return nil
			}
			for _, id := range ids {
				e, ok := appCtx.Registry.Entry(id)
				if !ok {
					continue
				}
				self := ""
				if id == appCtx.UserID {
					self = " (you)"
				}
				fmt.Printf("%4d  %s  %v%s\n", id, crypto.Fingerprint(e.SigningKey.Slice()), e.Roles, self)
			}
			return nil
		},
	}
}
