package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Pagesmith %s\n", AppVersion)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Println()

		// Show whether generation is usable without printing the key.
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			fmt.Println("GEMINI_API_KEY: configured")
		} else {
			fmt.Println("GEMINI_API_KEY: not set")
			fmt.Println()
			fmt.Println("Hint: set GEMINI_API_KEY to enable generation")
			fmt.Println("  export GEMINI_API_KEY=your-api-key")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
