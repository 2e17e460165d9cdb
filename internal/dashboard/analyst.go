package dashboard

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animehub/internal/catalog"
	"animehub/internal/render"
)

func (h *Handler) analystPage(c *gin.Context) {
	data := h.analystData(c, c.Query("user_query"), c.Query("analyst_query"), catalog.Params{}, noneResult(catalog.PanelAnalyst))
	h.renderPage(c, data)
}

// analystRun handles both buttons: "user" runs the user-view dropdown
// selection with its widget input, "analyst" runs the analyst-view one.
func (h *Handler) analystRun(c *gin.Context) {
	userQuery := c.PostForm("user_query")
	analystQuery := c.PostForm("analyst_query")
	params := catalog.Params{
		Genre:  c.PostForm("genre"),
		Studio: c.PostForm("studio"),
		Titles: c.PostFormArray("titles"),
	}

	id := catalog.QueryID(analystQuery)
	if c.PostForm("run") == "user" {
		id = catalog.QueryID(userQuery)
	}

	res := h.runQuery(c.Request.Context(), catalog.PanelAnalyst, id, params)
	h.renderPage(c, h.analystData(c, userQuery, analystQuery, params, res))
}

func (h *Handler) analystData(c *gin.Context, userQuery, analystQuery string, params catalog.Params, res Result) pageData {
	data := newPage(catalog.PanelAnalyst, res)
	data.UserViewGroup = catalog.GroupUserView
	data.AnalystViewGroup = catalog.GroupAnalystView
	data.UserView = catalog.ForPanel(catalog.PanelAnalyst, catalog.GroupUserView)
	data.AnalystView = catalog.ForPanel(catalog.PanelAnalyst, catalog.GroupAnalystView)
	data.Params = params

	data.Selected = data.UserView[0].ID
	if def, ok := catalog.Lookup(catalog.QueryID(userQuery)); ok && def.Group == catalog.GroupUserView {
		data.Selected = def.ID
	}
	data.SelectedAnalyst = data.AnalystView[0].ID
	if def, ok := catalog.Lookup(catalog.QueryID(analystQuery)); ok && def.Group == catalog.GroupAnalystView {
		data.SelectedAnalyst = def.ID
	}

	def, _ := catalog.Lookup(data.Selected)
	data.Input = def.Input
	if data.Input == catalog.InputNone {
		return data
	}

	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()
	opts, err := h.Catalog.Options(ctx)
	if err != nil {
		h.Log.Error("load widget options", zap.Error(err))
		if data.Result.Kind != KindError {
			data.Result = errorResult(catalog.PanelAnalyst, "", err)
		}
		return data
	}
	data.Options = opts
	if data.Input == catalog.InputGenre && params.Genre == "" && len(opts.Genres) > 0 {
		data.Params.Genre = opts.Genres[0]
	}
	if data.Input == catalog.InputStudio && params.Studio == "" && len(opts.Studios) > 0 {
		data.Params.Studio = opts.Studios[0]
	}
	return data
}

// analystChart re-runs a chart query and serves its bar chart as PNG.
func (h *Handler) analystChart(c *gin.Context) {
	id := catalog.QueryID(strings.TrimSuffix(c.Param("file"), ".png"))
	if !render.HasChart(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no chart for query"})
		return
	}

	res := h.runQuery(c.Request.Context(), catalog.PanelAnalyst, id, catalog.Params{})
	if res.Kind == KindError {
		c.JSON(res.Status(), gin.H{"error": res.Error})
		return
	}
	if res.Chart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing to plot"})
		return
	}

	var buf bytes.Buffer
	if err := res.Chart.RenderPNG(&buf); err != nil {
		h.Log.Error("render chart", zap.String("query", string(id)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
