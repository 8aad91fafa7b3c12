// Command gorea runs interactive demonstrations and benchmarks of the
// gorea concurrency primitives.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "gorea",
		Short: "Concurrency primitive demos and benchmarks",
		Long: `gorea is a CLI tool for exploring the gorea concurrency primitives
through interactive demonstrations and throughput benchmarks.

Run the queue and executor walkthroughs directly, or measure how they
perform under concurrent load.`,
		Version: version,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(benchCmd)
}
