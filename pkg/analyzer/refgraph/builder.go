package refgraph

import (
	"path/filepath"
	"strings"

	"github.com/vestigehq/vestige/pkg/symbols"
)

// Source exposes the indexed files a graph is built from. The symbols
// workspace satisfies it.
type Source interface {
	Files() []string
	FileInfoFor(path string) *symbols.FileInfo
}

// resolveExts are tried in order when an import omits the file extension.
var resolveExts = []string{".ts", ".tsx", ".js", ".mjs", ".cjs", ".py", ".go"}

// Build constructs the file-level reference graph from every import the
// source's files declare. Imports that do not resolve to a workspace file
// (standard library, third-party packages) produce no edge.
func Build(src Source) *Graph {
	files := src.Files()

	g := New()
	r := newResolver(files)
	for _, path := range files {
		g.Add(path)
	}

	for _, path := range files {
		info := src.FileInfoFor(path)
		if info == nil {
			continue
		}
		for _, imp := range info.Imports {
			for _, target := range r.resolve(path, imp.Module) {
				g.AddEdge(path, target)
			}
		}
	}
	return g
}

// resolver maps import module strings back to workspace file paths.
type resolver struct {
	exact    map[string]string   // path and path-without-ext -> path
	bySuffix map[string][]string // trailing path segments (no ext) -> paths
}

func newResolver(files []string) *resolver {
	r := &resolver{
		exact:    make(map[string]string, len(files)*2),
		bySuffix: make(map[string][]string),
	}
	for _, f := range files {
		norm := filepath.ToSlash(f)
		r.exact[norm] = f
		noExt := strings.TrimSuffix(norm, filepath.Ext(norm))
		r.exact[noExt] = f

		// Index by every trailing segment run so "pkg/util" or a Python
		// dotted module can find the file without knowing the root.
		segs := strings.Split(noExt, "/")
		for i := range segs {
			suffix := strings.Join(segs[i:], "/")
			r.bySuffix[suffix] = append(r.bySuffix[suffix], f)
		}
	}
	return r
}

func (r *resolver) resolve(from, module string) []string {
	if module == "" {
		return nil
	}

	if strings.HasPrefix(module, ".") {
		return r.resolveRelative(from, module)
	}

	// Python dotted modules address files by path.
	key := strings.ReplaceAll(module, ".", "/")
	if matches, ok := r.bySuffix[key]; ok {
		return r.without(matches, from)
	}
	return nil
}

func (r *resolver) resolveRelative(from, module string) []string {
	base := filepath.ToSlash(filepath.Join(filepath.Dir(from), module))

	candidates := []string{base}
	for _, ext := range resolveExts {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range resolveExts {
		candidates = append(candidates, base+"/index"+ext)
	}

	for _, c := range candidates {
		if target, ok := r.exact[c]; ok && target != from {
			return []string{target}
		}
	}
	return nil
}

func (r *resolver) without(matches []string, from string) []string {
	var out []string
	for _, m := range matches {
		if m != from {
			out = append(out, m)
		}
	}
	return out
}
