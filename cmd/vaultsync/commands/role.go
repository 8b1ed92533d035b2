package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vaultsync/internal/domain"
)

func roleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles on a registered user",
	}
	cmd.AddCommand(roleAddCmd(), roleRemoveCmd())
	return cmd
}

func roleAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [user-id] [role]",
		Short: "Add a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if err := unlock(); err != nil {
				return err
			}
			if err := appCtx.Registry.AddRole(id, domain.Role(args[1])); err != nil {
				return err
			}
			return publishRegistry()
		},
	}
}

func roleRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [user-id] [role]",
		Short: "Remove a role from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if err := unlock(); err != nil {
				return err
			}
			if err := appCtx.Registry.RemoveRole(id, domain.Role(args[1])); err != nil {
				return err
			}
			return publishRegistry()
		},
	}
}

func parseUserID(s string) (domain.UserID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return domain.UserID(n), nil
}
