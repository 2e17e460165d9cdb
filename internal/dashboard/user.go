package dashboard

import (
	"github.com/gin-gonic/gin"

	"animehub/internal/catalog"
)

func (h *Handler) userPage(c *gin.Context) {
	h.renderPage(c, h.userData(c.Query("query"), noneResult(catalog.PanelUser)))
}

func (h *Handler) userRun(c *gin.Context) {
	id := catalog.QueryID(c.PostForm("query"))
	res := h.runQuery(c.Request.Context(), catalog.PanelUser, id, catalog.Params{})
	h.renderPage(c, h.userData(string(id), res))
}

func (h *Handler) userData(selected string, res Result) pageData {
	data := newPage(catalog.PanelUser, res)
	data.Queries = catalog.ForPanel(catalog.PanelUser, "")
	data.Selected = catalog.QueryID(selected)
	if data.Selected == "" && len(data.Queries) > 0 {
		data.Selected = data.Queries[0].ID
	}
	return data
}
