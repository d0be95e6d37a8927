// Package scope maps changed files to the set of modules requiring
// re-analysis, walking the reference graph's dependent edges.
package scope

import (
	"errors"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/vestigehq/vestige/pkg/analyzer/refgraph"
	"github.com/vestigehq/vestige/pkg/models"
)

// ErrNoModuleStructure is returned when incremental analysis is requested
// before any module boundaries are known.
var ErrNoModuleStructure = errors.New("module structure not detected")

// Module is a named workspace region. Path is the directory or file prefix
// that claims ownership of files under it.
type Module struct {
	Name string
	Path string
}

// Index resolves a file to its owning module by longest-prefix path match.
type Index struct {
	modules []Module
	ids     map[string]uint32
}

// NewIndex builds an index over explicit module boundaries.
func NewIndex(modules []Module) *Index {
	sorted := make([]Module, len(modules))
	copy(sorted, modules)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Path) > len(sorted[j].Path)
	})

	ids := make(map[string]uint32, len(sorted))
	for _, m := range sorted {
		if _, ok := ids[m.Name]; !ok {
			ids[m.Name] = uint32(len(ids))
		}
	}
	return &Index{modules: sorted, ids: ids}
}

// FileModules builds the degenerate index where every file is its own
// module, used when no coarser structure is configured.
func FileModules(files []string) *Index {
	modules := make([]Module, len(files))
	for i, f := range files {
		modules[i] = Module{Name: f, Path: f}
	}
	return NewIndex(modules)
}

// Empty reports whether the index holds no module boundaries.
func (ix *Index) Empty() bool { return ix == nil || len(ix.modules) == 0 }

// Owner returns the module owning a file, chosen by longest prefix.
func (ix *Index) Owner(file string) (string, bool) {
	for _, m := range ix.modules {
		if file == m.Path || strings.HasPrefix(file, m.Path+"/") {
			return m.Name, true
		}
	}
	return "", false
}

// Resolve computes the affected set for a batch of changed files. Directly
// affected modules own a changed file; indirectly affected modules are
// found by breadth-first traversal of the graph's dependent edges, each
// carrying the discovery chain from its originating direct module.
func (ix *Index) Resolve(changed []string, g *refgraph.Graph) (models.AffectedSet, error) {
	if ix.Empty() {
		return models.AffectedSet{}, ErrNoModuleStructure
	}

	dependents := ix.moduleDependents(g)

	seen := roaring.New()
	var direct []string
	for _, f := range changed {
		name, ok := ix.Owner(f)
		if !ok {
			continue
		}
		id := ix.ids[name]
		if seen.Contains(id) {
			continue
		}
		seen.Add(id)
		direct = append(direct, name)
	}
	sort.Strings(direct)

	type visit struct {
		module string
		chain  []string
	}

	chains := make(map[string][]string)
	var indirect []string

	queue := make([]visit, 0, len(direct))
	for _, m := range direct {
		queue = append(queue, visit{module: m, chain: []string{m}})
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range dependents[cur.module] {
			id := ix.ids[dep]
			if seen.Contains(id) {
				continue
			}
			seen.Add(id)
			chain := append(append([]string(nil), cur.chain...), dep)
			chains[dep] = chain
			indirect = append(indirect, dep)
			queue = append(queue, visit{module: dep, chain: chain})
		}
	}
	sort.Strings(indirect)

	all := make([]string, 0, len(direct)+len(indirect))
	all = append(all, direct...)
	all = append(all, indirect...)
	sort.Strings(all)

	return models.AffectedSet{
		DirectlyAffected:   direct,
		IndirectlyAffected: indirect,
		AllAffected:        all,
		Chains:             chains,
	}, nil
}

// AffectedFiles expands an affected module set back into the graph files
// each module owns, in sorted order. The orchestrator schedules these.
func (ix *Index) AffectedFiles(affected models.AffectedSet, g *refgraph.Graph) []string {
	want := make(map[string]bool, len(affected.AllAffected))
	for _, m := range affected.AllAffected {
		want[m] = true
	}

	var files []string
	for _, f := range g.Nodes() {
		if name, ok := ix.Owner(f); ok && want[name] {
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files
}

// moduleDependents folds the file-level graph into module-level dependent
// adjacency: if file u imports file v, the module owning u depends on the
// module owning v, so v's module lists u's module as a dependent.
func (ix *Index) moduleDependents(g *refgraph.Graph) map[string][]string {
	adj := make(map[string]map[string]bool)
	for _, f := range g.Nodes() {
		owner, ok := ix.Owner(f)
		if !ok {
			continue
		}
		for _, dep := range g.Dependents(f) {
			depOwner, ok := ix.Owner(dep)
			if !ok || depOwner == owner {
				continue
			}
			if adj[owner] == nil {
				adj[owner] = make(map[string]bool)
			}
			adj[owner][depOwner] = true
		}
	}

	out := make(map[string][]string, len(adj))
	for m, set := range adj {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		out[m] = names
	}
	return out
}
