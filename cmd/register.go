package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pony-express-cli/internal/domain"
)

func newRegisterCmd(app *app) *cobra.Command {
	var username string
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.auth.Register(cmd.Context(), username, email, password); err != nil {
				var validationErr *domain.ValidationError
				if errors.As(err, &validationErr) {
					return fmt.Errorf("registration rejected: %s", validationErr.Error())
				}
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Run `pony login -u %s` to sign in.\n", username, username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
