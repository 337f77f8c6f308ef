package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
)

var htmlTemplate = template.Must(template.New("dataset").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table { border-collapse: collapse; font-family: monospace; }
th, td { border: 1px solid #999; padding: 2px 6px; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type htmlData struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// WriteHTML renders the dataset as a standalone HTML table.
func WriteHTML(w io.Writer, ds *domain.Dataset, title string) error {
	data := htmlData{
		Title:   title,
		Columns: ds.Columns,
		Rows:    make([][]string, 0, len(ds.Records)),
	}
	for _, rec := range ds.Records {
		row := make([]string, len(ds.Columns))
		for i, cell := range ds.Row(rec) {
			row[i] = cell.String()
		}
		data.Rows = append(data.Rows, row)
	}
	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
