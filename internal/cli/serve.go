package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the statement feed HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return appHandle.Run(context.Background())
	},
}
