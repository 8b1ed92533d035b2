package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vaultsync/internal/domain"
	"vaultsync/internal/registration"
)

var (
	requestRoles []string
	requestInfo  []string
)

func requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request [out-file]",
		Short: "Write a registration request artifact for the administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := unlock(); err != nil {
				return err
			}
			admin, err := appCtx.Config.AdminKeys()
			if err != nil {
				return err
			}
			info, err := parsePairs(requestInfo)
			if err != nil {
				return err
			}
			art, err := registration.NewRequest(info, *appCtx.Keys, toRoles(requestRoles), admin)
			if err != nil {
				return err
			}
			if err := art.WriteFile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Request written to %s. Hand it to the administrator.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&requestRoles, "role", []string{string(domain.RoleUser)}, "role to request (repeatable)")
	cmd.Flags().StringSliceVar(&requestInfo, "info", nil, "contact info as key=value (repeatable)")
	return cmd
}

func toRoles(names []string) []domain.Role {
	roles := make([]domain.Role, 0, len(names))
	for _, n := range names {
		roles = append(roles, domain.Role(n))
	}
	return roles
}

func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("want key=value, got %q", p)
		}
		out[k] = v
	}
	return out, nil
}
