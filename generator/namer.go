package generator

import "strconv"

// namer hands out fresh identifiers within a single function, using a
// monotonic counter so every declaration gets a unique name regardless of
// how deeply it is nested. Adapted from the naming scheme in
// github.com/gogpu/naga/hlsl's namer, trimmed to this package's needs: there
// is no keyword escaping here because every generated name already uses a
// reserved prefix no WGSL keyword can collide with.
type namer struct {
	counter uint32
}

func newNamer() *namer {
	return &namer{}
}

// next returns the next fresh identifier, prefixed to say what kind of
// binding it names (e.g. "x" for a let, "v" for a var, "c" for a for-loop
// counter).
func (n *namer) next(prefix string) string {
	name := prefix + strconv.FormatUint(uint64(n.counter), 10)
	n.counter++
	return name
}

// reset restarts the counter. Called once per function, so identifiers are
// unique within a function but not necessarily across the whole module.
func (n *namer) reset() {
	n.counter = 0
}
