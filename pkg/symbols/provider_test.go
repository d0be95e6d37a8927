package symbols

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func buildWorkspace(t *testing.T, files map[string]string) (*Workspace, string) {
	t.Helper()
	dir := writeFiles(t, files)

	paths := make([]string, 0, len(files))
	for name := range files {
		paths = append(paths, filepath.Join(dir, name))
	}

	ws := NewWorkspace()
	if err := ws.BuildIndex(context.Background(), paths); err != nil {
		t.Fatalf("BuildIndex() error: %v", err)
	}
	return ws, dir
}

func TestWorkspaceReferences(t *testing.T) {
	ws, dir := buildWorkspace(t, map[string]string{
		"lib.ts": `export function shared(): void {}
export function lonely(): void {}
`,
		"app.ts": `import {shared} from './lib';
shared();
`,
	})

	libPath := filepath.Join(dir, "lib.ts")
	if got := ws.References("shared", libPath); got == 0 {
		t.Error("shared should have external references")
	}
	if got := ws.References("lonely", libPath); got != 0 {
		t.Errorf("lonely has %d external references, want 0", got)
	}
}

func TestWorkspaceDeclarations(t *testing.T) {
	ws, dir := buildWorkspace(t, map[string]string{
		"a.ts": `export function dup(): void {}`,
		"b.ts": `function dup(): void {}`,
	})
	_ = dir

	decls := ws.Declarations("dup")
	if len(decls) != 2 {
		t.Fatalf("got %d declarations, want 2", len(decls))
	}
	if len(ws.Declarations("missing")) != 0 {
		t.Error("unknown symbol should return no declarations")
	}
}

func TestWorkspaceUpdate(t *testing.T) {
	ws, dir := buildWorkspace(t, map[string]string{
		"lib.ts": `export function target(): void {}`,
		"app.ts": `import {target} from './lib';
target();
`,
	})

	appPath := filepath.Join(dir, "app.ts")
	libPath := filepath.Join(dir, "lib.ts")

	// Rewrite the consumer so the reference disappears.
	if err := os.WriteFile(appPath, []byte("const other = 1;\nconsole.log(other);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ws.Update(appPath); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if got := ws.References("target", libPath); got != 0 {
		t.Errorf("target has %d external references after update, want 0", got)
	}
}

func TestWorkspaceRemove(t *testing.T) {
	ws, dir := buildWorkspace(t, map[string]string{
		"lib.ts": `export function target(): void {}`,
		"app.ts": `import {target} from './lib';
target();
`,
	})

	appPath := filepath.Join(dir, "app.ts")
	libPath := filepath.Join(dir, "lib.ts")

	ws.Remove(appPath)

	if got := ws.References("target", libPath); got != 0 {
		t.Errorf("target has %d references after remove, want 0", got)
	}
	if ws.FileInfoFor(appPath) != nil {
		t.Error("removed file should have no FileInfo")
	}
	for _, f := range ws.Files() {
		if f == appPath {
			t.Error("removed file still listed")
		}
	}
}

func TestBuildIndexSkipsUnparseable(t *testing.T) {
	ws, dir := buildWorkspace(t, map[string]string{
		"good.ts":  `export function ok(): void {}`,
		"data.txt": `not source code`,
	})

	if ws.FileInfoFor(filepath.Join(dir, "data.txt")) != nil {
		t.Error("unsupported file should not be indexed")
	}
	if ws.FileInfoFor(filepath.Join(dir, "good.ts")) == nil {
		t.Error("supported file missing from index")
	}
}
