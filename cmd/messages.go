package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pony-express-cli/internal/domain"
)

func newMessagesCmd(app *app) *cobra.Command {
	var asJSON bool
	var refresh bool

	cmd := &cobra.Command{
		Use:   "messages <chat-id>",
		Short: "List messages in a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID := domain.ChatID(args[0])
			if refresh {
				app.chats.Refresh(chatID)
			}

			var messages []domain.Message
			fetch := func(ctx context.Context) error {
				var err error
				messages, err = app.chats.Messages(ctx, chatID)
				return err
			}

			if asJSON {
				if err := fetch(cmd.Context()); err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(messages)
			}

			if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching messages...", fetch); err != nil {
				return err
			}

			return writeMessagesOutput(cmd, app, chatID, messages)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Invalidate the cached message list before fetching")

	return cmd
}

func writeMessagesOutput(cmd *cobra.Command, app *app, chatID domain.ChatID, messages []domain.Message) error {
	rendered, err := app.messagesRenderer(resolveChat(cmd.Context(), app, chatID), messages)
	if err != nil {
		return fmt.Errorf("render messages: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// resolveChat looks the chat up in the cached chat list to title the
// output; an unresolvable name degrades to the bare id.
func resolveChat(ctx context.Context, app *app, chatID domain.ChatID) domain.Chat {
	chats, err := app.chats.Chats(ctx)
	if err != nil {
		return domain.Chat{ID: chatID}
	}

	for _, chat := range chats {
		if chat.ID == chatID {
			return chat
		}
	}

	return domain.Chat{ID: chatID}
}
