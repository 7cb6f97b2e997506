package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pony",
		Short:         "Pony Express CLI: chat from the terminal",
		Long:          "pony is a terminal client for the Pony Express chat service: browse chats and message history, register and log in, and send messages. Remote data is served through a local query cache so repeated reads don't refetch.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp(context.Background())
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newChatsCmd(app),
		newMessagesCmd(app),
		newSendCmd(app),
		newProfileCmd(app),
		newRoutesCmd(app),
	)

	return rootCmd
}
