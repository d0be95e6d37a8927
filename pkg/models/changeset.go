package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ChangeSet identifies a batch of file edits to re-analyze incrementally.
type ChangeSet struct {
	Files     []string  `json:"files"`
	ChangeID  string    `json:"change_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeSet builds a ChangeSet with a deterministic id derived from the
// sorted file list and the timestamp.
func NewChangeSet(files []string) ChangeSet {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	now := time.Now()
	h := xxhash.New()
	for _, f := range sorted {
		h.WriteString(f)
		h.WriteString("\x00")
	}
	fmt.Fprintf(h, "%d", now.UnixNano())

	return ChangeSet{
		Files:     sorted,
		ChangeID:  fmt.Sprintf("cs-%012x", h.Sum64()&0xffffffffffff),
		Timestamp: now,
	}
}

// AffectedSet is the set of modules requiring re-analysis after a change.
// AllAffected is the duplicate-free union of directly and indirectly
// affected modules; every indirectly affected module carries a discovery
// chain starting at a directly affected module.
type AffectedSet struct {
	DirectlyAffected   []string            `json:"directly_affected"`
	IndirectlyAffected []string            `json:"indirectly_affected"`
	AllAffected        []string            `json:"all_affected"`
	Chains             map[string][]string `json:"chains,omitempty"`
}

// Cycle is a closed walk in the dependency graph, canonicalized so the
// node list starts at the lexicographically smallest member. A cycle is
// direct when exactly two modules import each other.
type Cycle struct {
	Nodes    []string `json:"nodes"`
	IsDirect bool     `json:"is_direct"`
}

// Canonicalize rotates the node list to start at the smallest node so a
// cycle discovered from different traversal starting points compares equal.
func (c *Cycle) Canonicalize() {
	if len(c.Nodes) == 0 {
		return
	}
	min := 0
	for i, n := range c.Nodes {
		if n < c.Nodes[min] {
			min = i
		}
	}
	rotated := make([]string, 0, len(c.Nodes))
	rotated = append(rotated, c.Nodes[min:]...)
	rotated = append(rotated, c.Nodes[:min]...)
	c.Nodes = rotated
	c.IsDirect = len(c.Nodes) == 2
}

// Key returns a node-set identity independent of rotation or traversal
// order, used to deduplicate reported cycles.
func (c *Cycle) Key() string {
	sorted := make([]string, len(c.Nodes))
	copy(sorted, c.Nodes)
	sort.Strings(sorted)
	h := xxhash.New()
	for _, n := range sorted {
		h.WriteString(n)
		h.WriteString("\x00")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
