package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pony-express-cli/internal/application"
)

func newRoutesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the screens available to the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, screen := range application.Routes(app.session.Current()) {
				suffix := ""
				if application.RequiresLogin(screen) {
					suffix = " (requires login)"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", screen, suffix); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
