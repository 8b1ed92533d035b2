package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultsync/internal/registration"
)

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [response-file]",
		Short: "Finish registration from the administrator's response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := unlock(); err != nil {
				return err
			}
			art, err := registration.ReadArtifact(args[0])
			if err != nil {
				return err
			}
			admin, err := appCtx.Config.AdminKeys()
			if err != nil {
				return err
			}
			svc := registration.NewService(appCtx.Registry, appCtx.Shared)
			resp, err := svc.Complete(art, appCtx.Keys, admin)
			if err != nil {
				return err
			}
			appCtx.Config.MergeSections(resp.Sections)
			if err := appCtx.Config.Save(); err != nil {
				return err
			}
			if err := appCtx.SaveSelf(resp.UserID); err != nil {
				return err
			}
			if err := appCtx.SaveRegistry(); err != nil {
				return err
			}
			if appCtx.Shared != nil {
				if err := appCtx.SyncShared(); err != nil {
					return err
				}
			}
			fmt.Printf("Registered as user %d with roles %v.\n", resp.UserID, resp.Roles)
			return nil
		},
	}
}
