package models

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Kind identifies the category of a finding.
type Kind string

const (
	KindUnusedImport   Kind = "unused-import"
	KindUnusedVariable Kind = "unused-variable"
	KindDeadFunction   Kind = "dead-function"
	KindDeadExport     Kind = "dead-export"
	KindCircularDep    Kind = "circular-dependency"
	KindLongFunction   Kind = "long-function"
)

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// Certainty is the confidence tier assigned to a finding. Only
// high-certainty findings are eligible for automatic fixes.
type Certainty string

const (
	CertaintyHigh   Certainty = "high"
	CertaintyMedium Certainty = "medium"
	CertaintyLow    Certainty = "low"
)

// Rank returns a sortable weight, highest certainty first.
func (c Certainty) Rank() int {
	switch c {
	case CertaintyHigh:
		return 0
	case CertaintyMedium:
		return 1
	default:
		return 2
	}
}

// Degrade lowers certainty by one tier.
func (c Certainty) Degrade() Certainty {
	switch c {
	case CertaintyHigh:
		return CertaintyMedium
	default:
		return CertaintyLow
	}
}

// Location is a source position attached to a finding.
type Location struct {
	File      string `json:"file"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line,omitempty"`
}

// Finding is a single detected issue with location, kind, and confidence.
type Finding struct {
	ID               string     `json:"id"`
	Kind             Kind       `json:"kind"`
	Certainty        Certainty  `json:"certainty"`
	Locations        []Location `json:"locations"`
	SymbolName       string     `json:"symbol_name,omitempty"`
	Message          string     `json:"message,omitempty"`
	SafeFixAvailable bool       `json:"safe_fix_available"`
	Tags             []string   `json:"tags,omitempty"`
}

// FindingID derives the deterministic finding identifier. Re-running
// analysis on unchanged input must reproduce the same id, so the id is a
// pure function of kind, file, symbol, and line.
func FindingID(kind Kind, file, symbol string, line uint32) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%s|%s|%d", kind, file, symbol, line)
	return fmt.Sprintf("%016x", h.Sum64())
}

// File returns the primary file of the finding.
func (f *Finding) File() string {
	if len(f.Locations) == 0 {
		return ""
	}
	return f.Locations[0].File
}

// Line returns the primary line of the finding.
func (f *Finding) Line() uint32 {
	if len(f.Locations) == 0 {
		return 0
	}
	return f.Locations[0].StartLine
}
