package rendersvc

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var htmlTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"pct":  func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	"num":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"int0": func(v float64) string { return fmt.Sprintf("%.0f", v) },
	"date": func(t report.RankingTable) string { return generatedOn(t) },
	"foot": func(t report.RankingTable) string { return footer(t) },
}).ParseFS(templateFS, "templates/*.html"))

// HTML renders the ranking as a printable page.
func HTML(w io.Writer, t report.RankingTable) error {
	if err := htmlTemplates.ExecuteTemplate(w, "ranking.html", t); err != nil {
		return errors.Wrap(err, "executing ranking template")
	}
	return nil
}
