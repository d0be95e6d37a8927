package analyzer

import (
	"fmt"
	"strings"

	"github.com/vestigehq/vestige/pkg/models"
)

// CycleDetector reports dependency cycles. Cycles are computed once per
// workspace pass and handed in via the context; each cycle is attributed
// to its lexicographically smallest member so it appears exactly once in
// the aggregate even though every member file is analyzed.
type CycleDetector struct{}

func (d *CycleDetector) Kind() models.Kind { return models.KindCircularDep }

func (d *CycleDetector) Detect(ctx *Context) []Candidate {
	var cands []Candidate
	for _, cycle := range ctx.Cycles {
		if len(cycle.Nodes) == 0 || cycle.Nodes[0] != ctx.File.Path {
			continue
		}
		kind := "indirect"
		if cycle.IsDirect {
			kind = "direct"
		}
		cands = append(cands, Candidate{
			Kind:   models.KindCircularDep,
			Symbol: strings.Join(cycle.Nodes, " -> "),
			Location: models.Location{
				File:      ctx.File.Path,
				StartLine: 1,
			},
			Message: fmt.Sprintf("%s circular dependency: %s", kind, strings.Join(cycle.Nodes, " -> ")),
		})
	}
	return cands
}
