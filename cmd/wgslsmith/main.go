// Command wgslsmith is the generator driver CLI: it synthesizes a random
// shader module from a seed and prints either its source text or its AST
// debug form, and can recondition an externally supplied module to strip
// undefined behavior.
//
// Usage:
//
//	wgslsmith generate [seed] [--debug] [--recondition] [--enable-fn NAME]...
//	wgslsmith recondition <file.wgsl>
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
