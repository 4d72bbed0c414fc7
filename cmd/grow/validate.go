package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/grow/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate <adventure.lua|dir>",
	Short: "Check an adventure script for consistency",
	Long:  `Compiles a Lua adventure and reports undefined scenes, empty patterns, unreachable scenes and rules.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ve, err := loader.Check(args[0])
		if ve != nil {
			for _, w := range ve.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
		}
		var invalid *loader.ValidationError
		if errors.As(err, &invalid) {
			for _, e := range invalid.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			return fmt.Errorf("%s is not valid", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s is valid.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
