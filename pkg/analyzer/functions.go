package analyzer

import (
	"fmt"

	"github.com/vestigehq/vestige/pkg/models"
	"github.com/vestigehq/vestige/pkg/symbols"
)

// FunctionDetector flags functions with no references: unexported ones as
// dead functions, exported ones as dead exports. With workspace scope the
// exported check consults the reference index; without it the classifier
// suppresses exported candidates.
type FunctionDetector struct {
	Functions bool
	Exports   bool
}

func (d *FunctionDetector) Kind() models.Kind { return models.KindDeadFunction }

func (d *FunctionDetector) Detect(ctx *Context) []Candidate {
	var cands []Candidate
	for _, decl := range ctx.File.Decls {
		if decl.Kind != symbols.SymbolFunction {
			continue
		}
		if ctx.File.Uses[decl.Name] > 0 {
			continue
		}

		kind := models.KindDeadFunction
		if decl.Exported {
			kind = models.KindDeadExport
		}
		if kind == models.KindDeadFunction && !d.Functions {
			continue
		}
		if kind == models.KindDeadExport && !d.Exports {
			continue
		}

		// Workspace scope: any reference from another file keeps the
		// symbol alive.
		if ctx.WorkspaceScope() && ctx.Refs.References(decl.Name, ctx.File.Path) > 0 {
			continue
		}

		msg := fmt.Sprintf("function %q has no references", decl.Name)
		if kind == models.KindDeadExport {
			msg = fmt.Sprintf("exported symbol %q has no references anywhere in the workspace", decl.Name)
		}

		cands = append(cands, Candidate{
			Kind:     kind,
			Symbol:   decl.Name,
			Exported: decl.Exported,
			Location: models.Location{
				File:      ctx.File.Path,
				StartLine: decl.Line,
				EndLine:   decl.EndLine,
			},
			Message: msg,
		})
	}
	return cands
}
