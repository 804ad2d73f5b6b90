// Command vassistant runs the task assistant: an HTTP API server, a local
// chat REPL and a grammar debugging helper.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "vassistant",
		Short:         "Natural-language task and reminder assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (optional)")

	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newChatCmd())
	root.AddCommand(newParseCmd())
	return root
}
