package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of onebox",
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	version := appVersion
	if version == "" {
		version = "devel"
	}
	fmt.Printf("onebox version %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
	if appCommit != "" {
		fmt.Printf("commit %s built on %s by %s\n", appCommit, appDate, appBuiltBy)
	}
}
