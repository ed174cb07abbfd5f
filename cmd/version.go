package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion records the build version reported by `gptchat version`.
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gptchat version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gptchat %s (%s/%s, %s)\n", appVersion, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}
