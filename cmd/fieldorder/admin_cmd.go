package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xxxsen/fieldorder/internal/model"
	"github.com/xxxsen/fieldorder/internal/service"
)

func newUserCmd(configPath *string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "manage staff accounts",
	}

	var input service.CreateUserInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				user, err := a.auth.CreateUser(ctx, input)
				if err != nil {
					return err
				}
				return printJSON(user)
			})
		},
	}
	createCmd.Flags().StringVar(&input.Email, "email", "", "login email")
	createCmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	createCmd.Flags().StringVar(&input.DisplayName, "name", "", "display name")
	createCmd.Flags().StringVar(&input.Role, "role", model.RoleTechnician, "admin or technician")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func newShareCmd(configPath *string) *cobra.Command {
	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "manage share links on behalf of a staff account",
	}
	var caller string
	shareCmd.PersistentFlags().StringVar(&caller, "caller", "", "id of the acting staff account")

	var (
		kind       string
		resourceID string
		days       int
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "issue a share link for an order or file collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				p, err := principalOf(ctx, a, caller)
				if err != nil {
					return err
				}
				issued, err := a.shareAdmin.Issue(ctx, p, model.ResourceKind(kind), resourceID, days)
				if err != nil {
					return err
				}
				return printJSON(issued)
			})
		},
	}
	issueCmd.Flags().StringVar(&kind, "kind", string(model.ResourceKindOrder), "order or file_collection")
	issueCmd.Flags().StringVar(&resourceID, "id", "", "resource id")
	issueCmd.Flags().IntVar(&days, "days", 7, "lifetime in days")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list active share links of a resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				p, err := principalOf(ctx, a, caller)
				if err != nil {
					return err
				}
				items, err := a.shareAdmin.ListActive(ctx, p, model.ResourceKind(kind), resourceID)
				if err != nil {
					return err
				}
				return printJSON(items)
			})
		},
	}
	listCmd.Flags().StringVar(&kind, "kind", string(model.ResourceKindOrder), "order or file_collection")
	listCmd.Flags().StringVar(&resourceID, "id", "", "resource id")

	var tokenID string
	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "revoke a share link",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configPath, func(ctx context.Context, a *app) error {
				p, err := principalOf(ctx, a, caller)
				if err != nil {
					return err
				}
				if err := a.shareAdmin.Revoke(ctx, p, tokenID); err != nil {
					return err
				}
				return printJSON(map[string]string{"revoked": tokenID})
			})
		},
	}
	revokeCmd.Flags().StringVar(&tokenID, "token-id", "", "share token id")

	shareCmd.AddCommand(issueCmd, listCmd, revokeCmd)
	return shareCmd
}

func withApp(ctx context.Context, configPath string, fn func(ctx context.Context, a *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, conn, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	a, err := buildApp(ctx, cfg, conn)
	if err != nil {
		return err
	}
	return fn(ctx, a)
}

func principalOf(ctx context.Context, a *app, userID string) (service.Principal, error) {
	if userID == "" {
		return service.Principal{}, fmt.Errorf("--caller is required")
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return service.Principal{}, fmt.Errorf("load caller: %w", err)
	}
	return service.Principal{UserID: user.ID, Role: user.Role}, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
