package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gogpu/wgslsmith"
	"github.com/gogpu/wgslsmith/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate [seed]",
	Short: "Synthesize a random shader module",
	Long: "Synthesize a random, type-correct shader module from a seed. If seed is\n" +
		"omitted, one is drawn from system entropy and printed to stderr so the\n" +
		"run can be reproduced.",
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Bool("recondition", false, "recondition the generated module before printing")
	generateCmd.Flags().StringArray("enable-fn", nil, "add NAME to the set of built-in functions the generator may call (repeatable)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := configureLogging(cmd)

	var seed *uint64
	if len(args) == 1 {
		v, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", args[0], err)
		}
		seed = &v
	}

	recond, err := cmd.Flags().GetBool("recondition")
	if err != nil {
		return err
	}
	enabledFns, err := cmd.Flags().GetStringArray("enable-fn")
	if err != nil {
		return err
	}

	opts := wgslsmith.Options{
		Options: generator.Options{
			Seed:       seed,
			EnabledFns: enabledFns,
			Debug:      getFlag(cmd, "debug"),
			Logger:     logger,
		},
		Recondition: recond,
	}

	result, err := wgslsmith.Generate(opts)
	if err != nil {
		return err
	}

	if seed == nil {
		fmt.Fprintf(os.Stderr, "seed: %d\n", result.Seed)
	}

	if opts.Debug {
		fmt.Printf("%#v\n", result.Module)
		return nil
	}

	fmt.Print(result.Source)
	return nil
}
