package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pony-express-cli/internal/domain"
)

func newProfileCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the logged-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var user domain.User
			fetch := func(ctx context.Context) error {
				var err error
				user, err = app.profile.CurrentUser(ctx)
				return err
			}

			run := func() error {
				if asJSON {
					return fetch(cmd.Context())
				}
				return runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching profile...", fetch)
			}

			if err := run(); err != nil {
				if errors.Is(err, domain.ErrNotLoggedIn) {
					return errors.New("no profile without a session: run `pony login` first")
				}
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(user)
			}

			rendered, err := app.profileRenderer(user)
			if err != nil {
				return fmt.Errorf("render profile: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
