package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animehub/internal/activity"
	"animehub/internal/catalog"
	"animehub/internal/inspect"
	"animehub/internal/render"
)

type Handler struct {
	Catalog    *catalog.Repo
	Inspector  *inspect.Inspector
	Hub        *activity.Hub
	Log        *zap.Logger
	ReportPath string
	Timeout    time.Duration
}

func NewHandler(repo *catalog.Repo, inspector *inspect.Inspector, hub *activity.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Catalog:    repo,
		Inspector:  inspector,
		Hub:        hub,
		Log:        logger,
		ReportPath: "queries_performance.csv",
		Timeout:    30 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/user") })

	rg.GET("/user", h.userPage)
	rg.POST("/user/run", h.userRun)

	rg.GET("/analyst", h.analystPage)
	rg.POST("/analyst/run", h.analystRun)
	rg.GET("/analyst/chart/:file", h.analystChart)

	rg.GET("/admin", h.adminPage)
	rg.POST("/admin/:action", h.adminRun)

	api := rg.Group("/api")
	api.GET("/queries", h.apiQueries)
	api.GET("/options", h.apiOptions)
	api.POST("/queries/:id", h.apiRun)
	api.GET("/admin/:action", h.apiAdmin)
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.Timeout)
}

// runQuery executes one catalog query on behalf of panel.
func (h *Handler) runQuery(ctx context.Context, panel catalog.Panel, id catalog.QueryID, p catalog.Params) Result {
	def, ok := catalog.Lookup(id)
	if !ok || def.Panel != panel {
		return errorResult(panel, id, fmt.Errorf("%w: %q on %s panel", catalog.ErrUnknownQuery, id, panel))
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	recs, err := h.Catalog.Run(ctx, id, p)
	h.publish(panel, string(id), len(recs), time.Since(start), err)
	if err != nil {
		h.Log.Error("query failed",
			zap.String("panel", string(panel)),
			zap.String("query", string(id)),
			zap.Error(err))
		return errorResult(panel, id, err)
	}

	summary := summaryLine(def, p, len(recs))
	if panel == catalog.PanelUser && len(recs) == 0 {
		res := noneResult(panel)
		res.Query = id
		res.Summary = summary
		return res
	}

	res := tableResult(panel, id, summary, Section{Table: render.NewTable(def.Columns, recs)})
	if panel == catalog.PanelAnalyst {
		if ch := render.BuildChart(id, recs); ch != nil {
			res.Kind = KindTableChart
			res.Chart = ch
		}
	}
	return res
}

func (h *Handler) publish(panel catalog.Panel, query string, rows int, took time.Duration, err error) {
	if h.Hub == nil {
		return
	}
	ev := activity.Event{
		Panel:      string(panel),
		Query:      query,
		Rows:       rows,
		DurationMS: took.Milliseconds(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	h.Hub.Publish(ev)
}
