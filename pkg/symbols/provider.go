// Package symbols provides workspace-wide symbol resolution on top of the
// parser. The analysis engine only depends on the Provider and
// ReferenceIndex interfaces; the tree-sitter backed Workspace is the
// default implementation.
package symbols

import (
	"context"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/vestigehq/vestige/pkg/parser"
)

// SymbolKind classifies a declaration.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolVariable SymbolKind = "variable"
	SymbolClass    SymbolKind = "class"
)

// Declaration is a named definition site.
type Declaration struct {
	Name     string
	File     string
	Line     uint32
	EndLine  uint32
	Kind     SymbolKind
	Exported bool
}

// Import is a single imported binding.
type Import struct {
	Module string   // imported module path or specifier
	Names  []string // local binding names introduced by the import
	Line   uint32
}

// Ignores records suppression directives found in a file.
type Ignores struct {
	File  bool            // whole-file ignore directive
	Lines map[uint32]bool // line-scoped directives (apply to their own and the next line)
}

// Ignored reports whether findings at the given line are suppressed.
func (ig Ignores) Ignored(line uint32) bool {
	if ig.File {
		return true
	}
	return ig.Lines[line] || (line > 0 && ig.Lines[line-1])
}

// FileInfo is everything the detectors need to know about one parsed file.
type FileInfo struct {
	Path          string
	Result        *parser.ParseResult
	Imports       []Import
	Decls         []Declaration
	Uses          map[string]int // identifier usage counts, declaration names excluded
	Ignores       Ignores
	DynamicAccess bool // file reaches symbols reflectively (eval, getattr, reflect)
}

// Provider parses files and extracts symbol information. Implementations
// must be safe for concurrent use.
type Provider interface {
	Parse(path string) (*parser.ParseResult, error)
	Extract(path string) (*FileInfo, error)
}

// ReferenceIndex resolves workspace-wide references to a symbol name.
// A nil ReferenceIndex means only file-local scope is available.
type ReferenceIndex interface {
	// References counts usages of name in files other than excludeFile.
	References(name, excludeFile string) int
	// Declarations returns all known declaration sites for name.
	Declarations(name string) []Declaration
}

// Workspace is the default tree-sitter backed Provider that also maintains
// a workspace-wide reference index. The index is built once per analysis
// pass and read concurrently by detector tasks; mutation happens only
// between passes.
type Workspace struct {
	mu    sync.RWMutex
	files map[string]*FileInfo
	decls map[string][]Declaration
	uses  map[string]map[string]int // name -> file -> count
}

// NewWorkspace creates an empty workspace provider.
func NewWorkspace() *Workspace {
	return &Workspace{
		files: make(map[string]*FileInfo),
		decls: make(map[string][]Declaration),
		uses:  make(map[string]map[string]int),
	}
}

// Parse parses a single file. Each call uses a dedicated parser since
// tree-sitter parsers are not safe for concurrent use.
func (w *Workspace) Parse(path string) (*parser.ParseResult, error) {
	p := parser.New()
	defer p.Close()
	return p.ParseFile(path)
}

// Extract parses a file and extracts its symbol information without
// touching the workspace index.
func (w *Workspace) Extract(path string) (*FileInfo, error) {
	result, err := w.Parse(path)
	if err != nil {
		return nil, err
	}
	return ExtractFromResult(result), nil
}

// BuildIndex parses every file in parallel and (re)builds the workspace
// reference index. Files that fail to parse are skipped here; per-file
// parse failures surface later when the file's own analysis task runs.
func (w *Workspace) BuildIndex(ctx context.Context, files []string) error {
	infos := make([]*FileInfo, 0, len(files))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(runtime.NumCPU() * 2)
	for _, path := range files {
		p.Go(func() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			info, err := w.Extract(path)
			if err != nil {
				return
			}
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = make(map[string]*FileInfo, len(infos))
	w.decls = make(map[string][]Declaration)
	w.uses = make(map[string]map[string]int)
	for _, info := range infos {
		w.indexLocked(info)
	}
	return nil
}

// indexLocked merges one file's info into the index maps.
func (w *Workspace) indexLocked(info *FileInfo) {
	w.files[info.Path] = info
	for _, d := range info.Decls {
		w.decls[d.Name] = append(w.decls[d.Name], d)
	}
	for name, count := range info.Uses {
		byFile := w.uses[name]
		if byFile == nil {
			byFile = make(map[string]int)
			w.uses[name] = byFile
		}
		byFile[info.Path] = count
	}
}

// Update re-extracts a single changed file and refreshes its index
// entries. Call only between analysis passes.
func (w *Workspace) Update(path string) error {
	info, err := w.Extract(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeLocked(path)
	w.indexLocked(info)
	return nil
}

// Remove drops a deleted file from the index.
func (w *Workspace) Remove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeLocked(path)
}

func (w *Workspace) removeLocked(path string) {
	old, ok := w.files[path]
	if !ok {
		return
	}
	delete(w.files, path)
	for _, d := range old.Decls {
		kept := w.decls[d.Name][:0]
		for _, existing := range w.decls[d.Name] {
			if existing.File != path {
				kept = append(kept, existing)
			}
		}
		if len(kept) == 0 {
			delete(w.decls, d.Name)
		} else {
			w.decls[d.Name] = kept
		}
	}
	for name := range old.Uses {
		if byFile, ok := w.uses[name]; ok {
			delete(byFile, path)
			if len(byFile) == 0 {
				delete(w.uses, name)
			}
		}
	}
}

// FileInfoFor returns the indexed info for a path, or nil if unknown.
func (w *Workspace) FileInfoFor(path string) *FileInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Files returns the indexed file paths.
func (w *Workspace) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	return paths
}

// References implements ReferenceIndex.
func (w *Workspace) References(name, excludeFile string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	total := 0
	for file, count := range w.uses[name] {
		if file == excludeFile {
			continue
		}
		total += count
	}
	return total
}

// Declarations implements ReferenceIndex.
func (w *Workspace) Declarations(name string) []Declaration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.decls[name]
}
