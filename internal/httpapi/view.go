package httpapi

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"CRMDashboard/internal/board"
)

const drilldownTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<main class="drilldown drilldown-{{.Color}}">
<h1>{{.Title}}</h1>
<p class="count">{{len .Items}} item(s)</p>
{{- if .Items}}
<ul class="entries">
{{- range .Items}}
<li>{{if .Link}}<a class="employee" href="{{.Link}}">{{.Text}}</a>{{else}}{{.Text}}{{end}}</li>
{{- end}}
</ul>
{{- else}}
<p class="empty">No items.</p>
{{- end}}
<nav class="export">
<a href="{{.CSV}}">CSV</a>
<a href="{{.XLSX}}">Excel</a>
</nav>
</main>
</body>
</html>
`

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() *templateRenderer {
	return &templateRenderer{
		templates: template.Must(template.New("drilldown").Parse(drilldownTemplate)),
	}
}

func (r *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type pageItem struct {
	Text string
	Link string
}

type drilldownView struct {
	Title string
	Color board.Color
	Items []pageItem
	CSV   string
	XLSX  string
}

// newDrilldownView links employee entries to their work history.
func newDrilldownView(dd board.Drilldown) drilldownView {
	v := drilldownView{
		Title: dd.Title,
		Color: dd.Color,
		Items: make([]pageItem, 0, len(dd.Entries)),
	}
	for _, e := range dd.Entries {
		item := pageItem{Text: board.EntryText(e)}
		if ref, ok := e.(board.EmployeeRef); ok && ref.ID.String() != "" {
			item.Link = fmt.Sprintf("/api/v1/employees/%s/work", url.PathEscape(ref.ID.String()))
		}
		v.Items = append(v.Items, item)
	}

	base := fmt.Sprintf("/api/v1/dashboard/%s/%s/export", url.PathEscape(dd.Metric), dd.Color)
	v.CSV = base + "?format=csv"
	v.XLSX = base + "?format=xlsx"
	return v
}

func (s *Server) drilldownPage(c echo.Context) error {
	var req bucketRequest
	if err := s.bind(c, &req); err != nil {
		return s.validationError(c, err)
	}
	dd, err := s.dashboard.Drilldown(c.Request().Context(), req.Metric, board.Color(req.Color))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.Render(http.StatusOK, "drilldown", newDrilldownView(dd))
}
