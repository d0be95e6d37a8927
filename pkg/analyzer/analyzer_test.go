package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestigehq/vestige/pkg/models"
	"github.com/vestigehq/vestige/pkg/symbols"
)

// stubRefs is a canned workspace reference index.
type stubRefs map[string]int

func (s stubRefs) References(name, excludeFile string) int { return s[name] }

func (s stubRefs) Declarations(name string) []symbols.Declaration { return nil }

func fileInfo() *symbols.FileInfo {
	return &symbols.FileInfo{
		Path: "a.ts",
		Uses: map[string]int{},
	}
}

func TestUnusedImportFinding(t *testing.T) {
	info := fileInfo()
	info.Imports = []symbols.Import{{Module: "m", Names: []string{"x"}, Line: 1}}

	ctx := &Context{File: info, Refs: stubRefs{}}
	cands := (&ImportDetector{}).Detect(ctx)
	require.Len(t, cands, 1)

	cl := &Classifier{}
	findings := cl.ClassifyAll(cands, ctx)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, models.KindUnusedImport, f.Kind)
	assert.Equal(t, models.CertaintyHigh, f.Certainty)
	assert.True(t, f.SafeFixAvailable)
	assert.Equal(t, "x", f.SymbolName)
}

func TestUsedImportNotFlagged(t *testing.T) {
	info := fileInfo()
	info.Imports = []symbols.Import{{Module: "m", Names: []string{"x"}, Line: 1}}
	info.Uses["x"] = 2

	cands := (&ImportDetector{}).Detect(&Context{File: info})
	assert.Empty(t, cands)
}

func TestSideEffectImportNotFlagged(t *testing.T) {
	info := fileInfo()
	info.Imports = []symbols.Import{{Module: "polyfill", Line: 1}}

	cands := (&ImportDetector{}).Detect(&Context{File: info})
	assert.Empty(t, cands)
}

func TestUnusedVariable(t *testing.T) {
	info := fileInfo()
	info.Decls = []symbols.Declaration{
		{Name: "dead", Kind: symbols.SymbolVariable, Line: 3},
		{Name: "live", Kind: symbols.SymbolVariable, Line: 4},
		{Name: "Pub", Kind: symbols.SymbolVariable, Line: 5, Exported: true},
	}
	info.Uses["live"] = 1

	cands := (&VariableDetector{}).Detect(&Context{File: info})
	require.Len(t, cands, 1)
	assert.Equal(t, "dead", cands[0].Symbol)
}

func TestDeadFunctionScopes(t *testing.T) {
	info := fileInfo()
	info.Decls = []symbols.Declaration{
		{Name: "helper", Kind: symbols.SymbolFunction, Line: 1},
	}
	d := &FunctionDetector{Functions: true, Exports: true}
	cl := &Classifier{}

	// Workspace scope, no references anywhere: high.
	wsCtx := &Context{File: info, Refs: stubRefs{}}
	findings := cl.ClassifyAll(d.Detect(wsCtx), wsCtx)
	require.Len(t, findings, 1)
	assert.Equal(t, models.CertaintyHigh, findings[0].Certainty)
	assert.False(t, findings[0].SafeFixAvailable)

	// File-only scope: medium.
	foCtx := &Context{File: info}
	findings = cl.ClassifyAll(d.Detect(foCtx), foCtx)
	require.Len(t, findings, 1)
	assert.Equal(t, models.CertaintyMedium, findings[0].Certainty)
}

func TestDeadFunctionKeptByExternalReference(t *testing.T) {
	info := fileInfo()
	info.Decls = []symbols.Declaration{
		{Name: "helper", Kind: symbols.SymbolFunction, Line: 1},
	}
	ctx := &Context{File: info, Refs: stubRefs{"helper": 3}}
	cands := (&FunctionDetector{Functions: true, Exports: true}).Detect(ctx)
	assert.Empty(t, cands)
}

func TestDeadExportSuppressedFileOnly(t *testing.T) {
	info := fileInfo()
	info.Decls = []symbols.Declaration{
		{Name: "Api", Kind: symbols.SymbolFunction, Line: 1, Exported: true},
	}
	d := &FunctionDetector{Functions: true, Exports: true}
	cl := &Classifier{}

	foCtx := &Context{File: info}
	findings := cl.ClassifyAll(d.Detect(foCtx), foCtx)
	assert.Empty(t, findings, "exported symbol may be used externally")

	wsCtx := &Context{File: info, Refs: stubRefs{}}
	findings = cl.ClassifyAll(d.Detect(wsCtx), wsCtx)
	require.Len(t, findings, 1)
	assert.Equal(t, models.KindDeadExport, findings[0].Kind)
	assert.Equal(t, models.CertaintyHigh, findings[0].Certainty)
}

func TestCycleReportedOnSmallestMember(t *testing.T) {
	cycle := models.Cycle{Nodes: []string{"a.ts", "b.ts"}, IsDirect: true}
	d := &CycleDetector{}

	aInfo := fileInfo()
	cands := d.Detect(&Context{File: aInfo, Cycles: []models.Cycle{cycle}})
	require.Len(t, cands, 1)
	assert.Contains(t, cands[0].Message, "direct circular dependency")

	bInfo := &symbols.FileInfo{Path: "b.ts", Uses: map[string]int{}}
	cands = d.Detect(&Context{File: bInfo, Cycles: []models.Cycle{cycle}})
	assert.Empty(t, cands, "cycle belongs to its smallest member only")
}

func TestClassifierExclusionPrecedence(t *testing.T) {
	cl := &Classifier{UnderscoreConvention: true}

	// Ignore directive wins.
	info := fileInfo()
	info.Ignores = symbols.Ignores{Lines: map[uint32]bool{3: true}}
	cand := Candidate{
		Kind:     models.KindUnusedVariable,
		Symbol:   "x",
		Location: models.Location{File: "a.ts", StartLine: 3},
	}
	_, ok := cl.Classify(cand, &Context{File: info})
	assert.False(t, ok)

	// Underscore convention.
	cand.Symbol = "_ignored"
	cand.Location.StartLine = 9
	_, ok = cl.Classify(cand, &Context{File: info})
	assert.False(t, ok)

	// Lifecycle names suppress dead-symbol kinds.
	lc := Candidate{
		Kind:     models.KindDeadFunction,
		Symbol:   "componentDidMount",
		Location: models.Location{File: "a.ts", StartLine: 12},
	}
	_, ok = cl.Classify(lc, &Context{File: info})
	assert.False(t, ok)

	// Test harness entry points match by prefix.
	lc.Symbol = "TestParseConfig"
	lc.Location.StartLine = 15
	_, ok = cl.Classify(lc, &Context{File: info})
	assert.False(t, ok)
}

func TestDynamicAccessDegradesDeadFindings(t *testing.T) {
	info := fileInfo()
	info.DynamicAccess = true

	cl := &Classifier{}
	ctx := &Context{File: info, Refs: stubRefs{}}

	f, ok := cl.Classify(Candidate{
		Kind:     models.KindDeadFunction,
		Symbol:   "maybeUsed",
		Location: models.Location{File: "a.ts", StartLine: 1},
	}, ctx)
	require.True(t, ok)
	assert.Equal(t, models.CertaintyMedium, f.Certainty)
	assert.Contains(t, f.Tags, "possibly-dynamic")

	// Non-dead kinds keep their certainty.
	f, ok = cl.Classify(Candidate{
		Kind:     models.KindUnusedImport,
		Symbol:   "x",
		Location: models.Location{File: "a.ts", StartLine: 2},
	}, ctx)
	require.True(t, ok)
	assert.Equal(t, models.CertaintyHigh, f.Certainty)
}

func TestLowCertaintyNeverSafeFix(t *testing.T) {
	for _, kind := range []models.Kind{
		models.KindUnusedImport, models.KindUnusedVariable,
		models.KindDeadFunction, models.KindDeadExport,
		models.KindCircularDep, models.KindLongFunction,
	} {
		assert.False(t, safeFix(kind, models.CertaintyLow), "kind %s", kind)
		assert.False(t, safeFix(kind, models.CertaintyMedium), "kind %s", kind)
	}
}

func TestFindingIDDeterminism(t *testing.T) {
	info := fileInfo()
	info.Imports = []symbols.Import{{Module: "m", Names: []string{"x"}, Line: 1}}
	ctx := &Context{File: info}
	cl := &Classifier{}

	first := cl.ClassifyAll((&ImportDetector{}).Detect(ctx), ctx)
	second := cl.ClassifyAll((&ImportDetector{}).Detect(ctx), ctx)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestRegistryRespectsFlags(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.CircularDeps = false
	cfg.LongFunctions = false

	for _, d := range Registry(cfg) {
		assert.NotEqual(t, models.KindCircularDep, d.Kind())
		assert.NotEqual(t, models.KindLongFunction, d.Kind())
	}
}
