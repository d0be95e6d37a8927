package analyzer

import (
	"fmt"

	"github.com/vestigehq/vestige/pkg/models"
	"github.com/vestigehq/vestige/pkg/parser"
)

// LongFunctionDetector flags functions whose body spans more lines than
// the configured threshold.
type LongFunctionDetector struct {
	MaxLines int
}

func (d *LongFunctionDetector) Kind() models.Kind { return models.KindLongFunction }

func (d *LongFunctionDetector) Detect(ctx *Context) []Candidate {
	if ctx.File.Result == nil {
		return nil
	}
	var cands []Candidate
	for _, fn := range parser.GetFunctions(ctx.File.Result) {
		lines := fn.Lines()
		if lines <= d.MaxLines {
			continue
		}
		cands = append(cands, Candidate{
			Kind:   models.KindLongFunction,
			Symbol: fn.Name,
			Location: models.Location{
				File:      ctx.File.Path,
				StartLine: fn.StartLine,
				EndLine:   fn.EndLine,
			},
			Message: fmt.Sprintf("function %q spans %d lines (limit %d)", fn.Name, lines, d.MaxLines),
		})
	}
	return cands
}
