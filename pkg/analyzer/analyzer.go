// Package analyzer holds the detector interface, the shared per-file
// analysis context, and the certainty classifier that turns raw candidates
// into findings.
package analyzer

import (
	"github.com/vestigehq/vestige/pkg/models"
	"github.com/vestigehq/vestige/pkg/symbols"
)

// Candidate is a raw detector hit before classification. Detectors report
// what they saw; certainty and exclusions are the classifier's job.
type Candidate struct {
	Kind     models.Kind
	Symbol   string
	Location models.Location
	Exported bool
	Message  string
}

// Context carries everything a detector may read for one file. It is
// immutable for the duration of a task: detectors never write to it, so
// one context can back all detectors of a task sequentially.
//
// Refs is nil when only the single file is visible (editor buffer
// analysis); detectors and the classifier treat that as file-only scope.
type Context struct {
	File   *symbols.FileInfo
	Refs   symbols.ReferenceIndex
	Cycles []models.Cycle
}

// WorkspaceScope reports whether workspace-wide symbol resolution is
// available.
func (c *Context) WorkspaceScope() bool { return c.Refs != nil }

// Detector inspects one file's context and emits candidates for a single
// finding kind.
type Detector interface {
	Kind() models.Kind
	Detect(ctx *Context) []Candidate
}

// DetectorConfig selects which detectors run and their thresholds.
type DetectorConfig struct {
	UnusedImports   bool
	UnusedVariables bool
	DeadFunctions   bool
	DeadExports     bool
	CircularDeps    bool
	LongFunctions   bool
	LongFunctionMax int
}

// DefaultDetectorConfig enables every detector with stock thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		UnusedImports:   true,
		UnusedVariables: true,
		DeadFunctions:   true,
		DeadExports:     true,
		CircularDeps:    true,
		LongFunctions:   true,
		LongFunctionMax: 80,
	}
}

// Registry returns the enabled detectors in a fixed order so per-file
// finding order is deterministic.
func Registry(cfg DetectorConfig) []Detector {
	var ds []Detector
	if cfg.UnusedImports {
		ds = append(ds, &ImportDetector{})
	}
	if cfg.UnusedVariables {
		ds = append(ds, &VariableDetector{})
	}
	if cfg.DeadFunctions || cfg.DeadExports {
		ds = append(ds, &FunctionDetector{
			Functions: cfg.DeadFunctions,
			Exports:   cfg.DeadExports,
		})
	}
	if cfg.CircularDeps {
		ds = append(ds, &CycleDetector{})
	}
	if cfg.LongFunctions {
		maxLines := cfg.LongFunctionMax
		if maxLines <= 0 {
			maxLines = 80
		}
		ds = append(ds, &LongFunctionDetector{MaxLines: maxLines})
	}
	return ds
}
