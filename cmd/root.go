// Package cmd defines the pagesmith command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pagesmith",
	Short: "Pagesmith - credit-gated AI website editing service",
	Long: `Pagesmith generates and iteratively edits single-page websites from
plain-language instructions. Each user gets a credit balance; edits stream
back over SSE and are charged only when they commit.

Running pagesmith with no arguments starts the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
