package output

import (
	"fmt"
	"strings"

	"github.com/vestigehq/vestige/pkg/models"
)

// FindingsTable renders a workspace summary as a findings table with an
// aggregate footer.
func FindingsTable(summary *models.WorkspaceAnalysisResult, colored bool) *Table {
	headers := []string{"File", "Line", "Kind", "Certainty", "Symbol", "Fix"}
	var rows [][]string

	for _, fr := range summary.Files {
		for _, f := range fr.Findings {
			certainty := string(f.Certainty)
			if colored {
				certainty = CertaintyColor(string(f.Certainty), certainty)
			}
			fix := ""
			if f.SafeFixAvailable {
				fix = "safe"
			}
			rows = append(rows, []string{
				f.File(),
				fmt.Sprintf("%d", f.Line()),
				string(f.Kind),
				certainty,
				f.SymbolName,
				fix,
			})
		}
	}

	footer := []string{
		fmt.Sprintf("%d files", len(summary.Files)),
		"",
		fmt.Sprintf("%d findings", summary.TotalFindings),
		"",
		fmt.Sprintf("%d failed", summary.FailedFiles),
		"",
	}
	return NewTable("Findings", headers, rows, footer, summary)
}

// CyclesTable renders dependency cycles.
func CyclesTable(cycles []models.Cycle) *Table {
	headers := []string{"#", "Kind", "Members"}
	rows := make([][]string, 0, len(cycles))
	for i, c := range cycles {
		kind := "indirect"
		if c.IsDirect {
			kind = "direct"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			kind,
			strings.Join(c.Nodes, " -> "),
		})
	}
	return NewTable("Dependency Cycles", headers, rows, nil, cycles)
}

// AffectedTable renders a change-scope resolution.
func AffectedTable(scope models.AffectedSet) *Table {
	headers := []string{"Module", "Impact", "Chain"}
	var rows [][]string
	for _, m := range scope.DirectlyAffected {
		rows = append(rows, []string{m, "direct", ""})
	}
	for _, m := range scope.IndirectlyAffected {
		rows = append(rows, []string{m, "indirect", strings.Join(scope.Chains[m], " -> ")})
	}
	return NewTable("Affected Modules", headers, rows, nil, scope)
}

// CacheStatsSection renders cache effectiveness.
func CacheStatsSection(stats models.CacheStats) *Section {
	return &Section{
		Title: "Cache",
		Content: fmt.Sprintf("hits: %d  misses: %d  hit rate: %.1f%%  entries: %d",
			stats.Hits, stats.Misses, stats.HitRate*100, stats.TotalEntries),
		Data: stats,
	}
}
