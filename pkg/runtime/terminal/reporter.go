package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

// Reporter prints the discovered catalog to the console in a formatted
// text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(entities []domain.VirtualEntity) error {
	tmpl := `
{{range .}}{{.Name}} [{{.ID}}]
{{range .Resources}}  - {{.Name}} ({{.Classifier}}, {{.BaseUnit}})
    id: {{.ID}}
{{end}}{{end}}`

	t, err := template.New("catalog").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, entities)
}
