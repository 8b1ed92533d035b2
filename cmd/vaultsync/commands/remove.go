package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [user-id]",
		Short: "Block a user; future writes stop encrypting for them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if err := unlock(); err != nil {
				return err
			}
			if err := appCtx.Registry.RemoveUser(id); err != nil {
				return err
			}
			if err := publishRegistry(); err != nil {
				return err
			}
			fmt.Printf("User %d blocked. Their ID will not be reused.\n", id)
			return nil
		},
	}
}
