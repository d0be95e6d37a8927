// Package workspace wires scanning, symbol indexing, detection,
// scheduling, and caching into full and incremental analysis runs.
package workspace

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vestigehq/vestige/internal/cache"
	"github.com/vestigehq/vestige/internal/scanner"
	"github.com/vestigehq/vestige/internal/worker"
	"github.com/vestigehq/vestige/pkg/analyzer"
	"github.com/vestigehq/vestige/pkg/analyzer/refgraph"
	"github.com/vestigehq/vestige/pkg/analyzer/scope"
	"github.com/vestigehq/vestige/pkg/config"
	"github.com/vestigehq/vestige/pkg/models"
	"github.com/vestigehq/vestige/pkg/symbols"
)

// RunState tracks where a run is in its lifecycle.
type RunState int32

const (
	StateIdle RunState = iota
	StateScanning
	StateScheduling
	StateAggregating
	StateDone
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateScheduling:
		return "scheduling"
	case StateAggregating:
		return "aggregating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Orchestrator coordinates one workspace's analysis runs. The graph,
// module index, and hash table are written only between passes, never
// while tasks are in flight.
type Orchestrator struct {
	root       string
	cfg        *config.Config
	scanner    *scanner.Scanner
	ws         *symbols.Workspace
	pool       *worker.Pool
	cache      *cache.ResultCache
	detectors  []analyzer.Detector
	classifier *analyzer.Classifier

	state  atomic.Int32
	graph  *refgraph.Graph
	index  *scope.Index
	cycles []models.Cycle
	hashes map[string]string
}

// New creates an orchestrator rooted at a workspace directory.
func New(root string, cfg *config.Config) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	detectorCfg := analyzer.DetectorConfig{
		UnusedImports:   cfg.Detectors.UnusedImports,
		UnusedVariables: cfg.Detectors.UnusedVariables,
		DeadFunctions:   cfg.Detectors.DeadFunctions,
		DeadExports:     cfg.Detectors.DeadExports,
		CircularDeps:    cfg.Detectors.CircularDependencies,
		LongFunctions:   cfg.Detectors.LongFunctions,
		LongFunctionMax: cfg.Thresholds.LongFunctionLines,
	}

	return &Orchestrator{
		root:      root,
		cfg:       cfg,
		scanner:   scanner.New(cfg),
		ws:        symbols.NewWorkspace(),
		pool:      worker.NewPool(workers),
		cache:     cache.New(time.Duration(cfg.Cache.TTL) * time.Minute),
		detectors: analyzer.Registry(detectorCfg),
		classifier: &analyzer.Classifier{
			UnderscoreConvention: cfg.Naming.UnderscoreConvention,
			ExtraLifecycle:       cfg.Naming.LifecycleNames,
		},
		hashes: make(map[string]string),
	}
}

// State reports the current run state.
func (o *Orchestrator) State() RunState { return RunState(o.state.Load()) }

func (o *Orchestrator) setState(s RunState) { o.state.Store(int32(s)) }

// Close shuts the worker pool down, waiting briefly for in-flight tasks.
func (o *Orchestrator) Close() {
	o.pool.Shutdown(5 * time.Second)
}

// CacheStats snapshots result-cache effectiveness.
func (o *Orchestrator) CacheStats() models.CacheStats { return o.cache.Stats() }

// InvalidateFiles drops cache entries covering paths changed outside an
// analysis run, such as watch events between scheduled runs.
func (o *Orchestrator) InvalidateFiles(paths []string) { o.cache.Invalidate(paths) }

// Graph returns the reference graph from the last structural pass.
func (o *Orchestrator) Graph() *refgraph.Graph { return o.graph }

// Cycles returns the dependency cycles from the last structural pass.
func (o *Orchestrator) Cycles() []models.Cycle { return o.cycles }

// AnalyzeFile analyzes a single file with file-only scope: no workspace
// reference index, so exported-symbol findings are suppressed and dead
// functions degrade to medium certainty.
func (o *Orchestrator) AnalyzeFile(ctx context.Context, path string) *models.FileAnalysisResult {
	start := time.Now()
	info, err := o.ws.Extract(path)
	if err != nil {
		return &models.FileAnalysisResult{
			Path:     path,
			Success:  false,
			Error:    err.Error(),
			Duration: time.Since(start),
		}
	}

	actx := &analyzer.Context{File: info}
	result := o.runDetectors(actx, path)
	result.Duration = time.Since(start)
	return result
}

// AnalyzeWorkspace runs a full analysis over every discovered file.
func (o *Orchestrator) AnalyzeWorkspace(ctx context.Context) (*models.WorkspaceAnalysisResult, error) {
	start := time.Now()

	o.setState(StateScanning)
	files, err := o.scanner.ScanDir(o.root)
	if err != nil {
		o.setState(StateFailed)
		return nil, fmt.Errorf("scan workspace: %w", err)
	}

	hashes := hashFiles(files)
	key := cache.Key("workspace:"+o.root, hashes)
	if o.cfg.Cache.Enabled {
		if cached, ok := o.cache.Get(key); ok {
			o.setState(StateDone)
			return cached, nil
		}
	}

	if err := o.buildStructure(ctx, files, hashes); err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	summary, err := o.schedule(ctx, files)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}
	summary.Duration = time.Since(start)

	if o.cfg.Cache.Enabled {
		o.cache.Set(key, summary, hashes)
	}
	o.setState(StateDone)
	return summary, nil
}

// AnalyzeIncremental analyzes only the modules affected by a change set.
// It requires a prior structural pass; without one it fails fast rather
// than silently analyzing nothing.
func (o *Orchestrator) AnalyzeIncremental(ctx context.Context, changes models.ChangeSet) (*models.IncrementalResult, error) {
	start := time.Now()

	if o.index == nil || o.graph == nil {
		o.setState(StateFailed)
		return nil, scope.ErrNoModuleStructure
	}

	o.setState(StateScanning)
	changed := make([]string, 0, len(changes.Files))
	for _, f := range changes.Files {
		if _, statErr := os.Stat(f); os.IsNotExist(statErr) {
			// Deleted: its dependents, recorded against the old graph,
			// still need re-analysis once the node is pruned.
			changed = append(changed, o.graph.Dependents(f)...)
			o.ws.Remove(f)
			delete(o.hashes, f)
			continue
		}
		changed = append(changed, f)
		if err := o.ws.Update(f); err != nil {
			continue // unreadable files are caught again at task time
		}
		if h, err := cache.HashFile(f); err == nil {
			o.hashes[f] = h
		}
	}
	// Imports may have moved and files may have appeared or vanished;
	// rebuild the structural view from the live index before scoping.
	// Changed files that failed to parse stay in the module index so the
	// failure is reported per-file instead of silently skipped.
	// Stale cache entries are caught by per-file hash validation on Get.
	o.graph = refgraph.Build(o.ws)
	o.cycles = o.graph.Cycles()
	idxFiles := o.ws.Files()
	known := make(map[string]bool, len(idxFiles))
	for _, f := range idxFiles {
		known[f] = true
	}
	for _, f := range changed {
		if !known[f] {
			idxFiles = append(idxFiles, f)
			known[f] = true
		}
	}
	o.index = scope.FileModules(idxFiles)

	if len(changed) == 0 {
		o.setState(StateDone)
		return &models.IncrementalResult{
			Changes: changes,
			Summary: models.NewWorkspaceAnalysisResult(),
		}, nil
	}

	affected, err := o.index.Resolve(changed, o.graph)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}
	files := o.index.AffectedFiles(affected, o.graph)

	scopeID := "incremental:" + strings.Join(affected.AllAffected, ",")
	scopeHashes := make(map[string]string, len(files))
	for _, f := range files {
		if h, ok := o.hashes[f]; ok {
			scopeHashes[f] = h
		}
	}
	key := cache.Key(scopeID, scopeHashes)
	if o.cfg.Cache.Enabled {
		if cached, ok := o.cache.Get(key); ok {
			o.setState(StateDone)
			return &models.IncrementalResult{
				Changes: changes,
				Scope:   affected,
				Summary: cached,
			}, nil
		}
	}

	summary, err := o.schedule(ctx, files)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}
	summary.Duration = time.Since(start)

	if o.cfg.Cache.Enabled {
		o.cache.Set(key, summary, scopeHashes)
	}
	o.setState(StateDone)
	return &models.IncrementalResult{
		Changes: changes,
		Scope:   affected,
		Summary: summary,
	}, nil
}

// BuildStructure scans the workspace and builds the symbol index, import
// graph, and module index without running detectors. It prepares the
// orchestrator for change-scoped analysis when no full pass has run yet.
func (o *Orchestrator) BuildStructure(ctx context.Context) error {
	o.setState(StateScanning)
	files, err := o.scanner.ScanDir(o.root)
	if err != nil {
		o.setState(StateFailed)
		return fmt.Errorf("scan workspace: %w", err)
	}
	if err := o.buildStructure(ctx, files, hashFiles(files)); err != nil {
		o.setState(StateFailed)
		return err
	}
	o.setState(StateIdle)
	return nil
}

// buildStructure indexes symbols and rebuilds the graph, cycles, module
// index, and hash table. Runs only between passes.
func (o *Orchestrator) buildStructure(ctx context.Context, files []string, hashes map[string]string) error {
	if err := o.ws.BuildIndex(ctx, files); err != nil {
		return fmt.Errorf("index workspace: %w", err)
	}
	o.graph = refgraph.Build(o.ws)
	o.cycles = o.graph.Cycles()
	o.index = scope.FileModules(files)
	o.hashes = hashes
	return nil
}

// schedule enqueues one task per file and aggregates results in
// submission order. Finding order within a file is preserved; aggregate
// counts are order-independent folds.
func (o *Orchestrator) schedule(ctx context.Context, files []string) (*models.WorkspaceAnalysisResult, error) {
	o.setState(StateScheduling)

	futures := make([]*worker.Future, 0, len(files))
	for _, path := range files {
		task := worker.Task{
			ID:  path,
			Run: o.taskFor(path),
		}
		fut, err := o.pool.Submit(task)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", path, err)
		}
		futures = append(futures, fut)
	}

	o.setState(StateAggregating)
	summary := models.NewWorkspaceAnalysisResult()
	for i, fut := range futures {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-fut.Done():
		}
		result, err := fut.Wait()
		if err != nil {
			result = &models.FileAnalysisResult{
				Path:    files[i],
				Success: false,
				Error:   err.Error(),
			}
		}
		summary.Add(*result)
	}
	return summary, nil
}

func (o *Orchestrator) taskFor(path string) func() (*models.FileAnalysisResult, error) {
	return func() (*models.FileAnalysisResult, error) {
		start := time.Now()
		info := o.ws.FileInfoFor(path)
		if info == nil {
			// Not indexed: parse failure or unsupported language.
			return &models.FileAnalysisResult{
				Path:     path,
				Success:  false,
				Error:    "file could not be parsed",
				Duration: time.Since(start),
			}, nil
		}

		actx := &analyzer.Context{
			File:   info,
			Refs:   o.ws,
			Cycles: o.cycles,
		}
		result := o.runDetectors(actx, path)
		result.Duration = time.Since(start)
		return result, nil
	}
}

// runDetectors executes the enabled detectors sequentially on one file.
// A panicking detector is recorded on the file's result; the remaining
// detectors still run.
func (o *Orchestrator) runDetectors(actx *analyzer.Context, path string) *models.FileAnalysisResult {
	result := &models.FileAnalysisResult{Path: path, Success: true}

	for _, d := range o.detectors {
		cands, err := o.detectOne(d, actx)
		if err != nil {
			result.Success = false
			if result.Error != "" {
				result.Error += "; " + err.Error()
			} else {
				result.Error = err.Error()
			}
			continue
		}
		result.Findings = append(result.Findings, o.classifier.ClassifyAll(cands, actx)...)
	}
	return result
}

func (o *Orchestrator) detectOne(d analyzer.Detector, actx *analyzer.Context) (cands []analyzer.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cands = nil
			err = fmt.Errorf("detector %s: %v", d.Kind(), r)
		}
	}()
	return d.Detect(actx), nil
}

// hashFiles hashes each file's content. Unreadable files are skipped
// rather than failing the run; they surface per-file at task time.
func hashFiles(files []string) map[string]string {
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		if h, err := cache.HashFile(f); err == nil {
			hashes[f] = h
		}
	}
	return hashes
}
