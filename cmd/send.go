package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/pony-express-cli/internal/domain"
)

func newSendCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <chat-id> <text>...",
		Short: "Send a message to a chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID := domain.ChatID(args[0])
			text := strings.Join(args[1:], " ")

			if _, err := app.chats.Send(cmd.Context(), chatID, text); err != nil {
				if errors.Is(err, domain.ErrNotLoggedIn) {
					return errors.New("sending requires a session: run `pony login` first")
				}
				return err
			}

			var messages []domain.Message
			fetch := func(ctx context.Context) error {
				var err error
				messages, err = app.chats.Messages(ctx, chatID)
				return err
			}

			if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Refreshing messages...", fetch); err != nil {
				return fmt.Errorf("message sent, refresh failed: %w", err)
			}

			return writeMessagesOutput(cmd, app, chatID, messages)
		},
	}

	return cmd
}
