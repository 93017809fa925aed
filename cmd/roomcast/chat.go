package main

import (
	"github.com/spf13/cobra"

	"github.com/roomcast/roomcast/internal/client"
	"github.com/roomcast/roomcast/internal/tui"
)

func newChatCmd() *cobra.Command {
	var (
		addr string
		name string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join a chat room from the terminal",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := client.Dial(addr)
			if err != nil {
				return err
			}
			defer c.Close()

			// The server asks for a name first; send it up front when given.
			if name != "" {
				if err := c.Send(name); err != nil {
					return err
				}
			}

			ui, err := tui.New(c, addr)
			if err != nil {
				return err
			}
			defer ui.Close()

			return ui.Run()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:12345", "server protocol address")
	cmd.Flags().StringVar(&name, "name", "", "display name to send on connect")
	return cmd
}
