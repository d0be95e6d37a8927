package refgraph

import (
	"testing"

	"github.com/vestigehq/vestige/pkg/symbols"
)

func TestAddEdgeDedup(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")
	g.AddEdge("a", "a")

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1 (dup and self-loop dropped)", g.EdgeCount())
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestDependentsAndDependencies(t *testing.T) {
	g := New()
	g.AddEdge("app", "lib")
	g.AddEdge("cli", "lib")
	g.AddEdge("lib", "util")

	deps := g.Dependents("lib")
	if len(deps) != 2 || deps[0] != "app" || deps[1] != "cli" {
		t.Errorf("Dependents(lib) = %v, want [app cli]", deps)
	}
	if got := g.Dependencies("lib"); len(got) != 1 || got[0] != "util" {
		t.Errorf("Dependencies(lib) = %v, want [util]", got)
	}
	if g.Dependents("missing") != nil {
		t.Error("unknown node should have no dependents")
	}
}

func TestReachableReverse(t *testing.T) {
	g := New()
	// a -> b -> c; d isolated
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.Add("d")

	visited := g.Reachable("c", true)
	if visited.GetCardinality() != 2 {
		t.Fatalf("reverse reachability of c = %d nodes, want 2", visited.GetCardinality())
	}
	for _, name := range []string{"a", "b"} {
		h, _ := g.Handle(name)
		if !visited.Contains(uint32(h)) {
			t.Errorf("%s should be reverse-reachable from c", name)
		}
	}
	hd, _ := g.Handle("d")
	if visited.Contains(uint32(hd)) {
		t.Error("isolated node must not appear")
	}
}

func TestCyclesDirect(t *testing.T) {
	g := New()
	g.AddEdge("b.ts", "a.ts")
	g.AddEdge("a.ts", "b.ts")

	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1", len(cycles))
	}
	c := cycles[0]
	if !c.IsDirect {
		t.Error("two-member cycle should be direct")
	}
	if c.Nodes[0] != "a.ts" {
		t.Errorf("cycle starts at %q, want lexicographically smallest a.ts", c.Nodes[0])
	}
}

func TestCyclesIndirectAndDedup(t *testing.T) {
	g := New()
	// z -> y -> x -> z, plus an acyclic tail
	g.AddEdge("z", "y")
	g.AddEdge("y", "x")
	g.AddEdge("x", "z")
	g.AddEdge("x", "leaf")

	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1", len(cycles))
	}
	c := cycles[0]
	if c.IsDirect {
		t.Error("three-member cycle should not be direct")
	}
	if len(c.Nodes) != 3 || c.Nodes[0] != "x" {
		t.Errorf("cycle = %v, want 3 nodes starting at x", c.Nodes)
	}
}

func TestRemoveNode(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	g.RemoveNode("b")

	if got := g.Cycles(); len(got) != 0 {
		t.Errorf("cycles after removal = %v, want none", got)
	}
	if got := g.Dependencies("a"); got != nil {
		t.Errorf("Dependencies(a) = %v after removal, want none", got)
	}
}

// fakeSource feeds pre-built file infos to the builder.
type fakeSource map[string]*symbols.FileInfo

func (s fakeSource) Files() []string {
	files := make([]string, 0, len(s))
	for f := range s {
		files = append(files, f)
	}
	return files
}

func (s fakeSource) FileInfoFor(path string) *symbols.FileInfo { return s[path] }

func imports(modules ...string) []symbols.Import {
	out := make([]symbols.Import, len(modules))
	for i, m := range modules {
		out[i] = symbols.Import{Module: m}
	}
	return out
}

func TestBuildResolvesRelativeImports(t *testing.T) {
	src := fakeSource{
		"proj/app.ts":       {Path: "proj/app.ts", Imports: imports("./lib", "fs")},
		"proj/lib.ts":       {Path: "proj/lib.ts", Imports: imports("./sub")},
		"proj/sub/index.ts": {Path: "proj/sub/index.ts"},
	}

	g := Build(src)

	if got := g.Dependencies("proj/app.ts"); len(got) != 1 || got[0] != "proj/lib.ts" {
		t.Errorf("app deps = %v, want [proj/lib.ts]; external import must not edge", got)
	}
	if got := g.Dependencies("proj/lib.ts"); len(got) != 1 || got[0] != "proj/sub/index.ts" {
		t.Errorf("lib deps = %v, want index resolution", got)
	}
}

func TestBuildResolvesDottedModules(t *testing.T) {
	src := fakeSource{
		"proj/pkg/util.py": {Path: "proj/pkg/util.py"},
		"proj/main.py":     {Path: "proj/main.py", Imports: imports("pkg.util", "os.path")},
	}

	g := Build(src)

	if got := g.Dependencies("proj/main.py"); len(got) != 1 || got[0] != "proj/pkg/util.py" {
		t.Errorf("main deps = %v, want [proj/pkg/util.py]", got)
	}
}
