package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/permissions"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users and their capabilities",
}

func authService() *services.AuthService {
	return services.NewAuthService(repository.NewUserRepository(database.GetDB()))
}

func init() {
	var (
		username  string
		password  string
		superuser bool
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			user, err := authService().CreateUser(services.CreateUserInput{
				Username:    username,
				Password:    password,
				IsSuperuser: superuser,
			})
			if err != nil {
				return err
			}
			c.Printf("Created user %q (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&username, "username", "u", "", "username")
	createCmd.Flags().StringVarP(&password, "password", "p", "", "password")
	createCmd.Flags().BoolVar(&superuser, "superuser", false, "grant every capability")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")

	grantCmd := &cobra.Command{
		Use:   "grant USERNAME CAPABILITY...",
		Short: "Grant capabilities to a user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if err := authService().Grant(args[0], args[1:]); err != nil {
				return err
			}
			c.Printf("Granted %d capabilities to %q\n", len(args)-1, args[0])
			return nil
		},
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke USERNAME CAPABILITY...",
		Short: "Revoke capabilities from a user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if err := authService().Revoke(args[0], args[1:]); err != nil {
				return err
			}
			c.Printf("Revoked %d capabilities from %q\n", len(args)-1, args[0])
			return nil
		},
	}

	capsCmd := &cobra.Command{
		Use:   "capabilities",
		Short: "List every known capability",
		Args:  cobra.NoArgs,
		// no database needed
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(c *cobra.Command, _ []string) error {
			for _, capability := range permissions.All() {
				fmt.Fprintln(c.OutOrStdout(), capability.String())
			}
			return nil
		},
	}

	userCmd.AddCommand(createCmd, grantCmd, revokeCmd, capsCmd)
}
