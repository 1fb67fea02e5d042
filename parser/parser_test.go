package parser

import (
	"testing"

	"github.com/gogpu/wgslsmith/generator"
	"github.com/gogpu/wgslsmith/recondition"
	"github.com/gogpu/wgslsmith/writer"
)

func seeded(seed uint64) generator.Options {
	opts := generator.DefaultOptions()
	opts.Seed = &seed
	return opts
}

// TestRoundTripManySeeds checks parse(write(m)) == m, observed at the text
// level: re-writing the parsed module reproduces the exact source it was
// parsed from.
func TestRoundTripManySeeds(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		g, _ := generator.New(seeded(seed))
		m := g.GenModule()
		source := writer.Write(m)

		parsed, err := Parse(source)
		if err != nil {
			t.Fatalf("seed %d: Parse failed: %v\nsource:\n%s", seed, err, source)
		}

		rewritten := writer.Write(parsed)
		if rewritten != source {
			t.Fatalf("seed %d: round trip mismatch\n--- original ---\n%s\n--- rewritten ---\n%s", seed, source, rewritten)
		}
	}
}

// TestRoundTripReconditionedManySeeds extends the round trip to reconditioned
// output, exercising BitcastExpr, FnCallExpr and the masked-shift rewrite
// that generator-only output never produces.
func TestRoundTripReconditionedManySeeds(t *testing.T) {
	for seed := uint64(100); seed < 130; seed++ {
		g, _ := generator.New(seeded(seed))
		m := recondition.Recondition(g.GenModule())
		source := writer.Write(m)

		parsed, err := Parse(source)
		if err != nil {
			t.Fatalf("seed %d: Parse failed: %v\nsource:\n%s", seed, err, source)
		}

		rewritten := writer.Write(parsed)
		if rewritten != source {
			t.Fatalf("seed %d: reconditioned round trip mismatch\n--- original ---\n%s\n--- rewritten ---\n%s", seed, source, rewritten)
		}
	}
}

func TestParseSimpleModule(t *testing.T) {
	source := "fn main() {\n    let x = 1i;\n    var y = 2u;\n    y = (y + x);\n    return;\n}\n"

	m, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(m.Functions) != 1 || m.Functions[0].Name != "main" {
		t.Fatalf("unexpected functions: %+v", m.Functions)
	}
	if writer.Write(m) != source {
		t.Fatalf("re-written source does not match:\n%s", writer.Write(m))
	}
}

func TestParseNegativeIntLiteral(t *testing.T) {
	source := "fn main() {\n    let x = -5i;\n    return;\n}\n"

	m, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if writer.Write(m) != source {
		t.Fatalf("re-written source does not match:\n%s", writer.Write(m))
	}
}

func TestParseForLoopHeader(t *testing.T) {
	source := "fn main() {\n    for (var i = 0i; (i < 10i); i = (i + 1i)) {\n        break;\n    }\n    return;\n}\n"

	m, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if writer.Write(m) != source {
		t.Fatalf("re-written source does not match:\n%s", writer.Write(m))
	}
}

func TestParseSwitch(t *testing.T) {
	source := "fn main() {\n    let s = 1i;\n    switch (s) {\n        case 1i, 2i: {\n            let a = 1i;\n        }\n        default: {\n            let b = 2i;\n        }\n    }\n    return;\n}\n"

	m, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if writer.Write(m) != source {
		t.Fatalf("re-written source does not match:\n%s", writer.Write(m))
	}
}

func TestParseBitcastAndVectorConstructor(t *testing.T) {
	source := "fn main() {\n    let v = vec3<i32>(1i, 2i, 3i);\n    let u = bitcast<u32>(1i);\n    return;\n}\n"

	m, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if writer.Write(m) != source {
		t.Fatalf("re-written source does not match:\n%s", writer.Write(m))
	}
}

func TestParseElseIfChain(t *testing.T) {
	source := "fn main() {\n    let x = 1i;\n    if ((x == 1i)) {\n        let a = 1i;\n    } else if ((x == 2i)) {\n        let b = 2i;\n    } else {\n        let c = 3i;\n    }\n    return;\n}\n"

	m, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if writer.Write(m) != source {
		t.Fatalf("re-written source does not match:\n%s", writer.Write(m))
	}
}

func TestParseHelperFunctionCall(t *testing.T) {
	source := "fn fn0(p0: i32) -> i32 {\n    return p0;\n}\n\nfn main() {\n    let x = fn0(1i);\n    return;\n}\n"

	m, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if writer.Write(m) != source {
		t.Fatalf("re-written source does not match:\n%s", writer.Write(m))
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("fn main() { let x = ; }"); err == nil {
		t.Fatal("expected a parse error on malformed source")
	}
}

func TestParseRejectsUndeclaredVar(t *testing.T) {
	source := "fn main() {\n    let x = y;\n    return;\n}\n"
	if _, err := Parse(source); err == nil {
		t.Fatal("expected an error referencing the undeclared name")
	}
}
