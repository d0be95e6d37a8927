package models

import (
	"reflect"
	"testing"
)

func TestNewChangeSetSortsFiles(t *testing.T) {
	cs := NewChangeSet([]string{"b.ts", "a.ts", "c.ts"})
	want := []string{"a.ts", "b.ts", "c.ts"}
	if !reflect.DeepEqual(cs.Files, want) {
		t.Errorf("Files = %v, want %v", cs.Files, want)
	}
	if cs.ChangeID == "" {
		t.Error("ChangeID should not be empty")
	}
	if cs.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestCycleCanonicalize(t *testing.T) {
	c := Cycle{Nodes: []string{"c.ts", "a.ts", "b.ts"}}
	c.Canonicalize()
	want := []string{"a.ts", "b.ts", "c.ts"}
	if !reflect.DeepEqual(c.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", c.Nodes, want)
	}
	if c.IsDirect {
		t.Error("three-node cycle should not be direct")
	}
}

func TestCycleCanonicalizePreservesWalkOrder(t *testing.T) {
	// A walk b->c->a rotated to start at a must keep the edge order a->b->c.
	c := Cycle{Nodes: []string{"b", "c", "a"}}
	c.Canonicalize()
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(c.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", c.Nodes, want)
	}
}

func TestCycleDirect(t *testing.T) {
	c := Cycle{Nodes: []string{"b.ts", "a.ts"}}
	c.Canonicalize()
	if !c.IsDirect {
		t.Error("two-node cycle should be direct")
	}
	if c.Nodes[0] != "a.ts" {
		t.Errorf("canonical start = %s, want a.ts", c.Nodes[0])
	}
}

func TestCycleKeyIgnoresRotation(t *testing.T) {
	a := Cycle{Nodes: []string{"a", "b", "c"}}
	b := Cycle{Nodes: []string{"b", "c", "a"}}
	if a.Key() != b.Key() {
		t.Error("rotated cycles should share a key")
	}

	other := Cycle{Nodes: []string{"a", "b", "d"}}
	if a.Key() == other.Key() {
		t.Error("different node sets should not share a key")
	}
}

func TestWorkspaceResultOrderIndependentFold(t *testing.T) {
	results := []FileAnalysisResult{
		{Path: "a.ts", Success: true, Findings: []Finding{
			{Kind: KindUnusedImport, Certainty: CertaintyHigh},
			{Kind: KindDeadFunction, Certainty: CertaintyMedium},
		}},
		{Path: "b.ts", Success: true, Findings: []Finding{
			{Kind: KindUnusedImport, Certainty: CertaintyHigh},
		}},
		{Path: "c.ts", Success: false, Error: "parse failure"},
	}

	forward := NewWorkspaceAnalysisResult()
	for _, r := range results {
		forward.Add(r)
	}
	backward := NewWorkspaceAnalysisResult()
	for i := len(results) - 1; i >= 0; i-- {
		backward.Add(results[i])
	}

	if !reflect.DeepEqual(forward.IssuesByKind, backward.IssuesByKind) {
		t.Errorf("IssuesByKind order-dependent: %v vs %v", forward.IssuesByKind, backward.IssuesByKind)
	}
	if !reflect.DeepEqual(forward.IssuesByCertainty, backward.IssuesByCertainty) {
		t.Errorf("IssuesByCertainty order-dependent: %v vs %v", forward.IssuesByCertainty, backward.IssuesByCertainty)
	}
	if forward.TotalFindings != 3 || forward.FailedFiles != 1 {
		t.Errorf("totals = %d findings, %d failed; want 3, 1", forward.TotalFindings, forward.FailedFiles)
	}
}

func TestWorkspaceResultCountsFindingsFromFailedFiles(t *testing.T) {
	r := NewWorkspaceAnalysisResult()
	r.Add(FileAnalysisResult{
		Path:    "x.ts",
		Success: false,
		Error:   "detector dead-function: boom",
		Findings: []Finding{
			{Kind: KindUnusedImport, Certainty: CertaintyHigh},
		},
	})

	if r.FailedFiles != 1 {
		t.Errorf("failed files = %d, want 1", r.FailedFiles)
	}
	if r.TotalFindings != 1 || r.IssuesByKind[KindUnusedImport] != 1 {
		t.Errorf("findings from the partially analyzed file must be counted: total=%d byKind=%v",
			r.TotalFindings, r.IssuesByKind)
	}
	if r.IssuesByCertainty[CertaintyHigh] != 1 {
		t.Errorf("certainty counts = %v, want one high", r.IssuesByCertainty)
	}
}
