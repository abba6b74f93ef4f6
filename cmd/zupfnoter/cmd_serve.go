package main

import (
	"github.com/spf13/cobra"

	"github.com/veeh-harfe/zupfnoter/internal/mcpserver"
)

var (
	ServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "serve the render pipeline as an MCP tool over stdio",
		Args:  cobra.NoArgs,
		RunE:  serveCmd,
	}
)

func init() {
	RootCmd.AddCommand(ServeCmd)
}

func serveCmd(cmd *cobra.Command, args []string) error {
	s := mcpserver.New("zupfnoter", "0.1.0")
	return mcpserver.Serve(s)
}
