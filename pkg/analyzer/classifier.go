package analyzer

import (
	"strings"

	"github.com/vestigehq/vestige/pkg/models"
)

// lifecycleNames are framework entry points that look dead to static
// reference counting but are invoked by a runtime or framework.
var lifecycleNames = map[string]bool{
	"main":                 true,
	"init":                 true,
	"setup":                true,
	"teardown":             true,
	"constructor":          true,
	"render":               true,
	"componentDidMount":    true,
	"componentWillUnmount": true,
	"getServerSideProps":   true,
	"getStaticProps":       true,
	"__init__":             true,
	"__main__":             true,
	"TestMain":             true,
}

// Classifier turns candidates into confidence-tagged findings. Exclusion
// rules run in a fixed precedence and short-circuit: ignore directive,
// then naming convention, then lifecycle names, then the kind's default
// rule. Classification is a pure function of the candidate and context.
type Classifier struct {
	// UnderscoreConvention treats leading-underscore symbols as
	// intentionally unused.
	UnderscoreConvention bool
	// ExtraLifecycle extends the built-in lifecycle name set.
	ExtraLifecycle []string
}

// Classify returns the finding for a candidate, or ok=false when an
// exclusion rule or scope suppression applies.
func (cl *Classifier) Classify(cand Candidate, ctx *Context) (models.Finding, bool) {
	if ctx.File.Ignores.Ignored(cand.Location.StartLine) {
		return models.Finding{}, false
	}
	if cl.UnderscoreConvention && strings.HasPrefix(cand.Symbol, "_") && isSymbolKind(cand.Kind) {
		return models.Finding{}, false
	}
	if isDeadKind(cand.Kind) && cl.isLifecycle(cand.Symbol) {
		return models.Finding{}, false
	}

	certainty, ok := cl.certainty(cand, ctx)
	if !ok {
		return models.Finding{}, false
	}

	var tags []string
	if isDeadKind(cand.Kind) && ctx.File.DynamicAccess {
		certainty = certainty.Degrade()
		tags = append(tags, "possibly-dynamic")
	}

	return models.Finding{
		ID:               models.FindingID(cand.Kind, cand.Location.File, cand.Symbol, cand.Location.StartLine),
		Kind:             cand.Kind,
		Certainty:        certainty,
		Locations:        []models.Location{cand.Location},
		SymbolName:       cand.Symbol,
		Message:          cand.Message,
		SafeFixAvailable: safeFix(cand.Kind, certainty),
		Tags:             tags,
	}, true
}

// ClassifyAll runs every candidate through classification, preserving
// detector emission order.
func (cl *Classifier) ClassifyAll(cands []Candidate, ctx *Context) []models.Finding {
	var findings []models.Finding
	for _, cand := range cands {
		if f, ok := cl.Classify(cand, ctx); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

func (cl *Classifier) certainty(cand Candidate, ctx *Context) (models.Certainty, bool) {
	workspace := ctx.WorkspaceScope()

	switch cand.Kind {
	case models.KindUnusedImport, models.KindUnusedVariable:
		return models.CertaintyHigh, true

	case models.KindDeadFunction:
		if workspace {
			return models.CertaintyHigh, true
		}
		return models.CertaintyMedium, true

	case models.KindDeadExport:
		// Without workspace resolution an export may be consumed
		// anywhere; suppress rather than guess.
		if !workspace {
			return models.Certainty(""), false
		}
		return models.CertaintyHigh, true

	case models.KindCircularDep:
		return models.CertaintyHigh, true

	case models.KindLongFunction:
		return models.CertaintyMedium, true
	}
	return models.CertaintyLow, true
}

func (cl *Classifier) isLifecycle(name string) bool {
	if lifecycleNames[name] {
		return true
	}
	// Go test harness entry points are invoked by name pattern.
	if strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark") || strings.HasPrefix(name, "Fuzz") {
		return true
	}
	for _, n := range cl.ExtraLifecycle {
		if n == name {
			return true
		}
	}
	return false
}

// isDeadKind reports kinds claiming a symbol is never referenced, the
// kinds weakened by dynamic access and lifecycle conventions.
func isDeadKind(kind models.Kind) bool {
	return kind == models.KindDeadFunction || kind == models.KindDeadExport
}

// isSymbolKind reports kinds where the underscore convention applies.
func isSymbolKind(kind models.Kind) bool {
	switch kind {
	case models.KindUnusedImport, models.KindUnusedVariable,
		models.KindDeadFunction, models.KindDeadExport:
		return true
	}
	return false
}

// safeFix is true only for high-certainty findings whose removal is
// structurally safe.
func safeFix(kind models.Kind, certainty models.Certainty) bool {
	if certainty != models.CertaintyHigh {
		return false
	}
	return kind == models.KindUnusedImport || kind == models.KindUnusedVariable
}
