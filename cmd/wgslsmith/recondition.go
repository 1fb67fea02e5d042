package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/wgslsmith/parser"
	"github.com/gogpu/wgslsmith/recondition"
	"github.com/gogpu/wgslsmith/writer"
)

var reconditionCmd = &cobra.Command{
	Use:   "recondition <file>",
	Short: "Recondition an existing shader module to remove undefined behavior",
	Long: "Parse a shader source file and rewrite it so that no remaining operator\n" +
		"can invoke undefined behavior, then print the reconditioned source.",
	Args: cobra.ExactArgs(1),
	RunE: runRecondition,
}

func runRecondition(cmd *cobra.Command, args []string) error {
	logger := configureLogging(cmd)

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	m, err := parser.Parse(string(source))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	out := recondition.ReconditionWithLogger(m, logger)

	if getFlag(cmd, "debug") {
		fmt.Printf("%#v\n", out)
		return nil
	}

	fmt.Print(writer.Write(out))
	return nil
}
