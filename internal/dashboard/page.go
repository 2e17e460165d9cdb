package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"slices"

	"github.com/gin-gonic/gin"

	"animehub/internal/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses the dashboard page templates. Install it on the engine
// with SetHTMLTemplate before serving.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"contains": func(list []string, s string) bool { return slices.Contains(list, s) },
		"cell": func(v any) string {
			if v == nil {
				return ""
			}
			return fmt.Sprint(v)
		},
	}).ParseFS(templateFS, "templates/*.tmpl"))
}

type tab struct {
	Title  string
	Href   string
	Active bool
}

type pageData struct {
	Title  string
	Panel  catalog.Panel
	Tabs   []tab
	Result Result

	// user panel
	Queries []catalog.Definition

	// analyst panel
	UserViewGroup    string
	AnalystViewGroup string
	UserView         []catalog.Definition
	AnalystView      []catalog.Definition
	SelectedAnalyst  catalog.QueryID
	Input            catalog.Input
	Options          catalog.Options
	Params           catalog.Params

	Selected catalog.QueryID
}

func newPage(panel catalog.Panel, res Result) pageData {
	titles := map[catalog.Panel]string{
		catalog.PanelUser:    "User",
		catalog.PanelAnalyst: "Analyst",
		catalog.PanelAdmin:   "Admin",
	}
	var tabs []tab
	for _, p := range []catalog.Panel{catalog.PanelUser, catalog.PanelAnalyst, catalog.PanelAdmin} {
		tabs = append(tabs, tab{Title: titles[p], Href: "/" + string(p), Active: p == panel})
	}
	return pageData{
		Title:  "Anime dashboard - " + titles[panel],
		Panel:  panel,
		Tabs:   tabs,
		Result: res,
	}
}

func (h *Handler) renderPage(c *gin.Context, data pageData) {
	c.HTML(data.Result.Status(), "page", data)
}
