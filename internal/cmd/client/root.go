package client

import (
	"github.com/spf13/cobra"
)

// BaseURLFunc returns the HTTP API base URL.
type BaseURLFunc func() string

// NewRoot constructs a root Cobra command for the ringlog client.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "ringlog",
		Short: "ringlog client commands",
	}
	for _, c := range NewCommands(baseURL) {
		root.AddCommand(c)
	}
	return root
}

// NewCommands returns the client commands for embedding in another root.
func NewCommands(baseURL BaseURLFunc) []*cobra.Command {
	return []*cobra.Command{
		newSendCommand(),
		newSeekToCommand(),
		newHealthCommand(),
		newStatsCommand(baseURL),
	}
}
