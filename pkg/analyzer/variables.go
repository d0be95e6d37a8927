package analyzer

import (
	"fmt"

	"github.com/vestigehq/vestige/pkg/models"
	"github.com/vestigehq/vestige/pkg/symbols"
)

// VariableDetector flags variable declarations never referenced in the
// file. Exported variables are left to the dead-export rules since their
// consumers may live elsewhere.
type VariableDetector struct{}

func (d *VariableDetector) Kind() models.Kind { return models.KindUnusedVariable }

func (d *VariableDetector) Detect(ctx *Context) []Candidate {
	var cands []Candidate
	for _, decl := range ctx.File.Decls {
		if decl.Kind != symbols.SymbolVariable || decl.Exported {
			continue
		}
		if ctx.File.Uses[decl.Name] > 0 {
			continue
		}
		cands = append(cands, Candidate{
			Kind:   models.KindUnusedVariable,
			Symbol: decl.Name,
			Location: models.Location{
				File:      ctx.File.Path,
				StartLine: decl.Line,
				EndLine:   decl.EndLine,
			},
			Message: fmt.Sprintf("variable %q is declared but never used", decl.Name),
		})
	}
	return cands
}
