// Package export renders fetch reports as console tables.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

type TableConfig struct {
	ChunkWidth  int
	StatusWidth int
	NoteWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		ChunkWidth:  36,
		StatusWidth: 8,
		NoteWidth:   58,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(report *domain.FetchReport) error {
	funcMap := template.FuncMap{
		"formatRow": func(chunk interface{}, status string, note interface{}) string {
			noteStr := ""
			if note != nil {
				noteStr = fmt.Sprintf("%v", note)
			}
			return fmt.Sprintf("| %-*v | %-*s | %-*s |",
				c.config.ChunkWidth, chunk,
				c.config.StatusWidth, status,
				c.config.NoteWidth, noteStr)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+",
				strings.Repeat("-", c.config.ChunkWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2),
				strings.Repeat("-", c.config.NoteWidth+2))
		},
	}

	tmpl := `
Fetch report: {{.Resource.Name}} [{{.Resource.ID}}]

Window: {{.Range}} ({{.Range.Period}} buckets)
Records stored: {{.Records}}
Buckets skipped: {{.Skipped}}
Elapsed: {{.Elapsed}}

{{separator}}
{{formatRow "Chunk" "Status" "Note"}}
{{separator}}
{{range .Outcome.Succeeded}}{{formatRow . "ok" ""}}
{{end}}{{range .Outcome.Failed}}{{formatRow .Range "failed" .Err}}
{{end}}{{separator}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
