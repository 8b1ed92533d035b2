package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vaultsync/internal/domain"
	"vaultsync/internal/registration"
)

var (
	reviewRoles    []string
	reviewSections []string
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [request-file] [response-file]",
		Short: "Administrator: grant a request and write the response artifact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := unlock(); err != nil {
				return err
			}
			if !appCtx.Registry.HasRole(appCtx.UserID, domain.RoleAdmin) {
				return fmt.Errorf("only an administrator can review requests")
			}
			art, err := registration.ReadArtifact(args[0])
			if err != nil {
				return err
			}
			sections, err := parseSections(reviewSections)
			if err != nil {
				return err
			}
			svc := registration.NewService(appCtx.Registry, appCtx.Shared)
			resp, id, err := svc.Review(art, appCtx.UserID, appCtx.Keys, registration.Grant{
				Roles:    toRoles(reviewRoles),
				Sections: sections,
			})
			if err != nil {
				return err
			}
			if err := appCtx.SaveRegistry(); err != nil {
				return err
			}
			if err := resp.WriteFile(args[1]); err != nil {
				return err
			}
			fmt.Printf("Granted user %d. Hand %s back to the requester.\n", id, args[1])
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&reviewRoles, "role", nil, "override granted roles (repeatable; default: as requested)")
	cmd.Flags().StringSliceVar(&reviewSections, "section", nil, "config to deliver as section.key=value (repeatable)")
	return cmd
}

func parseSections(pairs []string) (map[string]map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]map[string]string)
	for _, p := range pairs {
		path, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("want section.key=value, got %q", p)
		}
		section, key, ok := strings.Cut(path, ".")
		if !ok {
			return nil, fmt.Errorf("want section.key=value, got %q", p)
		}
		if out[section] == nil {
			out[section] = make(map[string]string)
		}
		out[section][key] = v
	}
	return out, nil
}
