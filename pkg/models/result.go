package models

import "time"

// FileAnalysisResult is the outcome of analyzing one file. A parse or
// detector failure is recorded here rather than aborting the run.
type FileAnalysisResult struct {
	Path      string        `json:"path"`
	Findings  []Finding     `json:"findings"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	FromCache bool          `json:"from_cache,omitempty"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
}

// CacheStats is a snapshot of result-cache effectiveness.
type CacheStats struct {
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hit_rate"`
	TotalEntries int     `json:"total_entries"`
}

// WorkspaceAnalysisResult aggregates per-file results for a full run.
// The count maps are order-independent folds: merging the same file
// results in any arrival order yields identical counts.
type WorkspaceAnalysisResult struct {
	Files             []FileAnalysisResult `json:"files"`
	TotalFindings     int                  `json:"total_findings"`
	FailedFiles       int                  `json:"failed_files"`
	IssuesByKind      map[Kind]int         `json:"issues_by_kind"`
	IssuesByCertainty map[Certainty]int    `json:"issues_by_certainty"`
	Duration          time.Duration        `json:"duration_ns,omitempty"`
}

// NewWorkspaceAnalysisResult creates an initialized aggregate.
func NewWorkspaceAnalysisResult() *WorkspaceAnalysisResult {
	return &WorkspaceAnalysisResult{
		Files:             make([]FileAnalysisResult, 0),
		IssuesByKind:      make(map[Kind]int),
		IssuesByCertainty: make(map[Certainty]int),
	}
}

// Add folds one file result into the aggregate. Findings count even
// when the file failed partway: detectors that ran before the failure
// produced real findings, and the counts must agree with Files.
func (w *WorkspaceAnalysisResult) Add(fr FileAnalysisResult) {
	w.Files = append(w.Files, fr)
	if !fr.Success {
		w.FailedFiles++
	}
	for _, f := range fr.Findings {
		w.TotalFindings++
		w.IssuesByKind[f.Kind]++
		w.IssuesByCertainty[f.Certainty]++
	}
}

// IncrementalResult is the outcome of a change-scoped run.
type IncrementalResult struct {
	Changes ChangeSet                `json:"change_set"`
	Scope   AffectedSet              `json:"affected_set"`
	Summary *WorkspaceAnalysisResult `json:"summary"`
}
