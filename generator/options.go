package generator

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

// goldenGamma mixes a single seed value into the two halves math/rand/v2's
// PCG generator expects, so callers only ever have to think about one
// 64-bit seed. It is the fractional part of the golden ratio in Q64, the
// same constant splitmix64-style generators use to avoid seeding both PCG
// streams identically.
const goldenGamma = 0x9E3779B97F4A7C15

// Options configures a Generator. The zero value is usable: New replaces
// every non-positive limit with its DefaultOptions value.
type Options struct {
	// Seed pins the RNG sequence. A nil Seed draws one from system entropy
	// once, via New, and the drawn value is reported back so a driver can
	// print it for reproducibility — thereafter generation consumes only
	// the seeded RNG.
	Seed *uint64

	// EnabledFns names built-in functions the driver has made available to
	// the generated module. The core admission table in this package never
	// produces a bare function call itself (FnCallExpr exists only for
	// helpers the reconditioner injects), so this set is plumbed through
	// unused here and is a hook for a future driver/harness layer.
	EnabledFns []string

	// Debug affects only a driver, never generation itself; carried here
	// so Options round-trips through a CLI flag set unchanged.
	Debug bool

	// AllowBooleanBitwiseOps extends BitAnd/BitOr admission to operands of
	// boolean type, in addition to the always-admitted integer domain.
	// Defaults to false: the reference implementation this was distilled
	// from flags non-short-circuiting boolean & and | as broken on one
	// backend, so the conservative default excludes them.
	AllowBooleanBitwiseOps bool

	// MaxExprDepth caps recursive expression nesting.
	MaxExprDepth int
	// MaxStmtDepth caps nesting of block-introducing statements (If, Loop,
	// Compound, Switch, ForLoop). Not named by the source material's
	// constant list, but required by the same "depth-bounded recursive
	// synthesis" framing applied to expressions.
	MaxStmtDepth int
	// MaxStmtsPerBlock bounds how many statements gen_block emits before
	// stopping; each block independently draws a budget in [1, MaxStmtsPerBlock].
	MaxStmtsPerBlock int
	// MaxFnCount bounds how many helper functions gen_module emits ahead
	// of the mandatory main entry point.
	MaxFnCount int
	// MaxVarsPerFn bounds how many let/var declarations a single function
	// may introduce.
	MaxVarsPerFn int

	// Logger receives Debug-level traces of admission-set decisions. A nil
	// Logger (the zero value) disables logging entirely, so library callers
	// never pay for it unless a driver opts in — matching how naga's own
	// packages take optional Options structs.
	Logger *logrus.Logger
}

// DefaultOptions returns the constants this package is tuned against.
func DefaultOptions() Options {
	return Options{
		MaxExprDepth:     5,
		MaxStmtDepth:     3,
		MaxStmtsPerBlock: 6,
		MaxFnCount:       4,
		MaxVarsPerFn:     12,
	}
}

func (o *Options) setDefaults() {
	d := DefaultOptions()
	if o.MaxExprDepth <= 0 {
		o.MaxExprDepth = d.MaxExprDepth
	}
	if o.MaxStmtDepth <= 0 {
		o.MaxStmtDepth = d.MaxStmtDepth
	}
	if o.MaxStmtsPerBlock <= 0 {
		o.MaxStmtsPerBlock = d.MaxStmtsPerBlock
	}
	if o.MaxFnCount <= 0 {
		o.MaxFnCount = d.MaxFnCount
	}
	if o.MaxVarsPerFn <= 0 {
		o.MaxVarsPerFn = d.MaxVarsPerFn
	}
}

// resolveSeed returns o.Seed's value, drawing one from system entropy and
// recording it on o when it was nil.
func (o *Options) resolveSeed() uint64 {
	if o.Seed != nil {
		return *o.Seed
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("generator: failed to draw a seed from system entropy: %v", err))
	}
	seed := binary.LittleEndian.Uint64(buf[:])
	o.Seed = &seed
	return seed
}
