package main

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// version is set when building via a release pipeline, but *not* when
// installing via "go install" — mirrors go-corset's own Version var.
var version string

// rootCmd is the base command when wgslsmith is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "wgslsmith",
	Short: "A differential-testing generator for a WGSL-family shading language.",
	Long:  "wgslsmith synthesizes random, type-correct shader modules and reconditions shaders to remove undefined behavior, for differential testing of shader compiler backends.",
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Print("wgslsmith ")
			if version != "" {
				fmt.Print(version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Print(info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}
			fmt.Println()
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "print the AST debug form instead of source text")
	rootCmd.Flags().Bool("version", false, "print version information")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(reconditionCmd)
}

// getFlag reads a bool flag, exiting like go-corset's cmd.GetFlag does when
// the flag was never registered — a programming error in this CLI, not a
// user-facing one.
func getFlag(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return v
}

func configureLogging(cmd *cobra.Command) *log.Logger {
	logger := log.New()
	if getFlag(cmd, "debug") {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
