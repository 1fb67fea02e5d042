// Package wgslsmith provides a differential-testing generator for a WGSL-
// family shading language: given a seed, it synthesizes a syntactically
// valid, type-correct shader module together with an input-data
// descriptor for its entry point, and can rewrite any module (generated or
// externally parsed) to eliminate undefined behavior so that any
// remaining divergence between compiler backends is a genuine bug.
//
// The package provides a simple, high-level API for the common
// generate-then-recondition-then-print pipeline, as well as lower-level
// access to each stage via its own subpackage.
//
// Example usage:
//
//	seed := uint64(42)
//	result, err := wgslsmith.Generate(wgslsmith.Options{
//	    Options: generator.Options{Seed: &seed},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Source)
//
// For direct control over generation, reconditioning, and printing, use
// the generator, recondition, and writer packages.
package wgslsmith

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/wgslsmith/ast"
	"github.com/gogpu/wgslsmith/generator"
	"github.com/gogpu/wgslsmith/inputdata"
	"github.com/gogpu/wgslsmith/recondition"
	"github.com/gogpu/wgslsmith/writer"
)

// Options configures the end-to-end pipeline. It embeds generator.Options
// unchanged; Recondition additionally selects whether the generated module
// is passed through package recondition before printing.
type Options struct {
	generator.Options

	// Recondition runs the generated module through recondition.Recondition
	// before printing, guarding every division, remainder, shift, and
	// signed arithmetic operator the generator could have produced.
	Recondition bool
}

// Result is the output of one end-to-end Generate call.
type Result struct {
	// Seed is the resolved seed: either Options.Seed's value, or the one
	// drawn from system entropy when it was nil. A caller that wants a
	// reproducible run must record this.
	Seed uint64
	// Module is the generated (and, if requested, reconditioned) AST.
	Module *ast.Module
	// Source is writer.Write(Module): the deterministic WGSL-family source
	// text for Module.
	Source string
	// Inputs is one synthesized literal per parameter of Module's entry
	// function.
	Inputs []inputdata.Value
}

// Generate runs the full pipeline: synthesize a module from opts, optionally
// recondition it, print it, and synthesize matching entry-point inputs.
//
// Generate is a pure function of opts once its seed is resolved: two calls
// with the same fully-specified Options (a non-nil Seed) produce
// byte-identical Result.Source.
func Generate(opts Options) (Result, error) {
	g, seed := generator.New(opts.Options)
	m := g.GenModule()

	if opts.Recondition {
		m = recondition.ReconditionWithLogger(m, opts.Logger)
	}

	source := writer.Write(m)

	inputRng := rand.New(rand.NewPCG(seed, seed))
	inputs, err := safeInputs(inputRng, m)
	if err != nil {
		return Result{}, fmt.Errorf("wgslsmith: synthesizing entry-point inputs: %w", err)
	}

	return Result{Seed: seed, Module: m, Source: source, Inputs: inputs}, nil
}

// safeInputs calls inputdata.Generate, converting its no-entry-function
// panic into an error: Generate's own pipeline always produces a module
// with a main function, but Recondition accepts (and this function must
// tolerate) a hand-built or externally parsed Module that might not.
func safeInputs(rng *rand.Rand, m *ast.Module) (values []inputdata.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module has no entry function")
		}
	}()
	return inputdata.Generate(rng, m), nil
}
