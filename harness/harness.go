// Package harness describes the collaborators this module's core hands a
// generated (or reconditioned) Module to, without implementing any of
// them: a pretty-printer/parser round trip, a differential-testing runner
// that drives one or more compiler backends, and a reducer that shrinks a
// failing module toward a minimal reproduction.
//
// Every one of these lives firmly outside this module's scope (see
// spec.md §1's Non-goals): subprocess orchestration of external
// compilers, GPU buffer/pipeline/readback plumbing, and test-case
// minimization all require OS processes, a GPU device, or a search loop
// over module edits, none of which the generator, scope, writer, or
// reconditioner packages need to do their own jobs. The interfaces here
// exist so a driver built on top of this module has a named contract to
// implement, the way naga's own Parse/Lower/Generate stages compose
// without any one of them depending on a concrete downstream consumer.
//
// A typical driver's pipeline:
//
//  1. generator.New + Generator.GenModule to produce a Module from a seed.
//  2. Optionally recondition.Recondition it.
//  3. Printer.Print it to source text (see package writer for the one
//     concrete implementation this module ships).
//  4. Hand the source, plus an inputdata.Value slice, to a Runner
//     implementation that compiles and executes it on each backend under
//     test and compares results.
//  5. On divergence, repeatedly apply a Reducer to shrink the Module
//     before reporting it.
package harness

import (
	"context"

	"github.com/gogpu/wgslsmith/ast"
)

// Printer renders a Module to source text. package writer's Write function
// satisfies this via WriterFunc.
type Printer interface {
	Print(m *ast.Module) string
}

// WriterFunc adapts a plain func(*ast.Module) string — such as writer.Write
// — to the Printer interface.
type WriterFunc func(m *ast.Module) string

// Print calls f.
func (f WriterFunc) Print(m *ast.Module) string { return f(m) }

// Parser is the inverse of Printer: it reconstructs a Module from source
// text. package parser's Parse function satisfies this via ParserFunc, and
// is the only implementation this module ships; an external shader source
// not produced by this module's own Printer is also a legal input, as long
// as it parses under the same grammar.
type Parser interface {
	Parse(source string) (*ast.Module, error)
}

// ParserFunc adapts a plain func(string) (*ast.Module, error) — such as
// parser.Parse — to the Parser interface.
type ParserFunc func(source string) (*ast.Module, error)

// Parse calls f.
func (f ParserFunc) Parse(source string) (*ast.Module, error) { return f(source) }

// BackendResult is one compiler/driver backend's observed outcome for a
// single Module invocation: the entry function's return value (rendered as
// source text, since this module's core has no runtime value
// representation) plus any error the backend itself reported.
type BackendResult struct {
	// Backend names which compiler or driver produced this result, e.g.
	// "naga-spirv" or "naga-msl".
	Backend string
	// Output is the backend's rendering of the entry function's return
	// value, or empty if Err is set.
	Output string
	// Err is set when the backend itself failed to compile or execute the
	// module, as distinct from having produced a divergent-but-defined
	// result.
	Err error
}

// Runner compiles and executes a Module, with its paired input-data
// descriptor, on every backend it is configured with, and reports each
// backend's result. Implementations own all GPU device acquisition,
// pipeline construction, buffer upload, dispatch, and mapped-range
// readback — none of which this module's core touches.
//
// A Runner that finds two BackendResult.Output values disagreeing (with
// both Err nil) has found a genuine backend divergence once the Module has
// been reconditioned: recondition.Recondition having already eliminated
// every operator this spec defines as undefined means such a divergence
// cannot be explained by UB in the shader itself.
type Runner interface {
	Run(ctx context.Context, m *ast.Module, inputs []InputValue) ([]BackendResult, error)
}

// InputValue is the Runner-facing shape of one inputdata.Value: a
// parameter name, paired with a literal rendered as source text so a
// Runner never needs to import package ast to read a scalar argument.
type InputValue struct {
	ParamName string
	Literal   string
}

// Reducer shrinks a Module that has already been observed (via Runner) to
// diverge across backends, searching for a smaller module that still
// diverges. Implementations are expected to repeatedly apply candidate
// edits (statement deletion, expression simplification, function removal)
// and re-invoke a Runner to check the divergence still reproduces.
type Reducer interface {
	Reduce(ctx context.Context, m *ast.Module, stillDiverges func(*ast.Module) (bool, error)) (*ast.Module, error)
}
