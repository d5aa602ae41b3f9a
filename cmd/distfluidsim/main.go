// Command distfluidsim runs a pair of distributed fluid interfaces
// against each other: two small networks, each a single capacitive node,
// joined by one distributed interface link per side over a latent
// transport. It exists to exercise the library end to end; a real
// simulator embeds internal/distif directly alongside its own network.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "distfluidsim",
	Short: "distfluidsim runs a two-sided distributed fluid interface demo.",
	Long: `distfluidsim builds two small fluid networks, each with one ` +
		`capacitive node, and joins them with a pair of distributed fluid ` +
		`interface links exchanged over a latency-modeled transport. It is ` +
		`useful for exercising the mode arbitration, demand control, and ` +
		`supply response logic end to end without a host simulator.`,
}

func main() {
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
