package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Pratham266/cassure-go/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cassure %s (%s)\n", version.Version, version.Commit)
	},
}
