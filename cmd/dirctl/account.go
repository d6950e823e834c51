package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"centerdir/internal/application/orchestrators"
	"centerdir/internal/config"
	"centerdir/internal/domain/account"
)

// newPasswordEnv supplies the password when --password is not given, keeping
// it out of shell history.
const newPasswordEnv = config.Prefix + "NEW_PASSWORD"

func newCreateAccountCmd() *cobra.Command {
	var email, role, password string
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create a local account allowed to add programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(newPasswordEnv)
			}
			if password == "" {
				return errors.New("password required: pass --password or set " + newPasswordEnv)
			}

			b, err := openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			id, err := orchestrators.ExecuteCreateAccount(cmd.Context(), orchestrators.CreateAccountInput{
				Email:    email,
				Password: password,
				Role:     role,
			}, orchestrators.CreateAccountDeps{AccountStore: b.Accounts})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s account %s (%s)\n", role, email, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", account.RoleEditor, "account role: admin or editor")
	cmd.Flags().StringVar(&password, "password", "", "account password (at least 12 characters)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
