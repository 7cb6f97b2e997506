package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pony-express-cli/internal/domain"
)

func newChatsCmd(app *app) *cobra.Command {
	var asJSON bool
	var refresh bool

	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if refresh {
				app.chats.RefreshChats()
			}

			var chats []domain.Chat
			fetch := func(ctx context.Context) error {
				var err error
				chats, err = app.chats.Chats(ctx)
				return err
			}

			if asJSON {
				if err := fetch(cmd.Context()); err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(chats)
			}

			if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching chats...", fetch); err != nil {
				return err
			}

			rendered, err := app.chatsRenderer(chats)
			if err != nil {
				return fmt.Errorf("render chats: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Invalidate the cached chat list before fetching")

	return cmd
}
