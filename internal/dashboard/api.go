package dashboard

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animehub/internal/catalog"
	"animehub/internal/render"
)

type queryInfo struct {
	catalog.Definition
	HasChart bool `json:"has_chart"`
}

// apiQueries lists the catalog, optionally filtered by ?panel=.
func (h *Handler) apiQueries(c *gin.Context) {
	panel := catalog.Panel(c.Query("panel"))
	items := make([]queryInfo, 0)
	for _, d := range catalog.Definitions() {
		if panel != "" && d.Panel != panel {
			continue
		}
		items = append(items, queryInfo{Definition: d, HasChart: d.Panel == catalog.PanelAnalyst && render.HasChart(d.ID)})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) apiOptions(c *gin.Context) {
	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()

	opts, err := h.Catalog.Options(ctx)
	if err != nil {
		h.Log.Error("load widget options", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "options failed"})
		return
	}
	c.JSON(http.StatusOK, opts)
}

// apiRun executes a query by id. The JSON body carries Params and may be
// empty for parameter-free queries.
func (h *Handler) apiRun(c *gin.Context) {
	id := catalog.QueryID(c.Param("id"))
	def, ok := catalog.Lookup(id)
	if !ok {
		res := errorResult("", id, fmt.Errorf("%w: %q", catalog.ErrUnknownQuery, id))
		c.JSON(res.Status(), res)
		return
	}

	var params catalog.Params
	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res := h.runQuery(c.Request.Context(), def.Panel, id, params)
	c.JSON(res.Status(), res)
}
