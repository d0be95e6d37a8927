package analyzer

import (
	"fmt"

	"github.com/vestigehq/vestige/pkg/models"
)

// ImportDetector flags imported bindings never referenced in the file.
// Side-effect imports (no bindings) are never flagged.
type ImportDetector struct{}

func (d *ImportDetector) Kind() models.Kind { return models.KindUnusedImport }

func (d *ImportDetector) Detect(ctx *Context) []Candidate {
	var cands []Candidate
	for _, imp := range ctx.File.Imports {
		for _, name := range imp.Names {
			if ctx.File.Uses[name] > 0 {
				continue
			}
			cands = append(cands, Candidate{
				Kind:   models.KindUnusedImport,
				Symbol: name,
				Location: models.Location{
					File:      ctx.File.Path,
					StartLine: imp.Line,
					EndLine:   imp.Line,
				},
				Message: fmt.Sprintf("import %q from %q is never used", name, imp.Module),
			})
		}
	}
	return cands
}
