package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string
)

func main() {
	root := &cobra.Command{
		Use:           "roomcast",
		Short:         "Broadcast chat room served over TCP and WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newChatCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
