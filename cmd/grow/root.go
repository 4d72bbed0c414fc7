package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grow [adventure.grow|adventure.lua]",
	Short: "Grow plays and grows branching text adventures",
	Long: `Grow runs text adventures made of scenes and rules. Players can extend
the adventure while playing it: type ":help" in the game to see how.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGame,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.Bool("plain", false, "Use the plain line interface instead of the full screen one")
	f.String("script", "", "Play input lines from a file (implies --plain, echoes input)")
	f.Bool("stats", false, "Print turn counters to stderr on exit")
	f.String("root", "", "Directory adventures are stored in (GROW_ROOT)")
	f.String("adventure", "", "Adventure to open (GROW_ADVENTURE)")
	f.String("store", "", `Adventure store, "file" or "redis" (GROW_STORE)`)
	f.String("redis", "", "Redis address for the redis store (GROW_REDIS_ADDR)")
	f.Int64("seed", 0, "Seed for unknown-input responses (GROW_SEED)")
}
