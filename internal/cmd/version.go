package cmd

import (
	"fmt"
	rtdebug "runtime/debug"

	"github.com/spf13/cobra"
)

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		version := "devel"
		if info, ok := rtdebug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		fmt.Printf("gavchat %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
