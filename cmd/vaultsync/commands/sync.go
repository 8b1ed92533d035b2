package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge the local and shared locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := unlock(); err != nil {
				return err
			}
			if err := appCtx.SyncShared(); err != nil {
				return err
			}
			fmt.Println("Sync complete.")
			return nil
		},
	}
}
