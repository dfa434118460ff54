package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "notesd",
	Short: "notesd - a private note transport service",
	Long: `notesd ingests, retains and redistributes small tagged notes
between senders and subscribers over a gRPC-compatible transport.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(statsCmd)
}

// exitCodeFor maps a command failure to the process exit codes from
// spec §6: 64 for usage errors, 70 for everything else operational.
func exitCodeFor(err error) int {
	if _, ok := err.(*usageError); ok {
		return 64
	}
	return 70
}

type usageError struct{ error }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{fmt.Errorf(format, args...)}
}
