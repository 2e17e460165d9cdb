package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animehub/internal/catalog"
	"animehub/internal/render"
)

var ErrUnknownAction = errors.New("unknown admin action")

const (
	ActionStats       = "stats"
	ActionIndexes     = "indexes"
	ActionPerformance = "performance"
	ActionCluster     = "cluster"
)

func (h *Handler) adminPage(c *gin.Context) {
	h.renderPage(c, newPage(catalog.PanelAdmin, noneResult(catalog.PanelAdmin)))
}

func (h *Handler) adminRun(c *gin.Context) {
	res := h.adminAction(c.Request.Context(), c.Param("action"))
	h.renderPage(c, newPage(catalog.PanelAdmin, res))
}

// adminAction runs one of the unparameterized admin panel actions.
func (h *Handler) adminAction(ctx context.Context, action string) Result {
	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var res Result
	switch action {
	case ActionStats:
		res = h.adminStats(ctx)
	case ActionIndexes:
		res = h.adminIndexes(ctx)
	case ActionPerformance:
		res = h.adminPerformance()
	case ActionCluster:
		res = h.adminCluster(ctx)
	default:
		res = errorResult(catalog.PanelAdmin, "", fmt.Errorf("%w: %q", ErrUnknownAction, action))
	}

	var err error
	if res.Kind == KindError {
		err = errors.New(res.Error)
		h.Log.Warn("admin action failed", zap.String("action", action), zap.String("error", res.Error))
	}
	h.publish(catalog.PanelAdmin, action, res.Rows(), time.Since(start), err)
	return res
}

func (h *Handler) adminStats(ctx context.Context) Result {
	stats, err := h.Inspector.CollectionStats(ctx)
	if err != nil {
		return errorResult(catalog.PanelAdmin, "", err)
	}
	sections := make([]Section, 0, len(stats))
	for _, s := range stats {
		sections = append(sections, Section{Title: s.Collection, Table: s.Table})
	}
	return tableResult(catalog.PanelAdmin, "", "", sections...)
}

func (h *Handler) adminIndexes(ctx context.Context) Result {
	tbl, err := h.Inspector.Indexes(ctx)
	if err != nil {
		return errorResult(catalog.PanelAdmin, "", err)
	}
	return tableResult(catalog.PanelAdmin, "", "", Section{Table: tbl})
}

func (h *Handler) adminPerformance() Result {
	tbl, err := h.Inspector.PerformanceReport(h.ReportPath)
	if err != nil {
		return errorResult(catalog.PanelAdmin, "", err)
	}
	return tableResult(catalog.PanelAdmin, "", "", Section{Table: tbl})
}

// adminCluster reports replica counts per shard. A failure is shown inline
// and does not fail the request.
func (h *Handler) adminCluster(ctx context.Context) Result {
	state, err := h.Inspector.ClusterState(ctx)
	if err != nil {
		return Result{
			Kind:  KindError,
			Panel: catalog.PanelAdmin,
			Error: "Error fetching cluster state: " + err.Error(),
		}
	}

	shards := make([]string, 0, len(state))
	for id := range state {
		shards = append(shards, id)
	}
	sort.Strings(shards)

	tbl := &render.Table{Columns: []string{"Shard", "Replicas"}, Rows: make([][]any, 0, len(shards))}
	total := 0
	for _, id := range shards {
		tbl.Rows = append(tbl.Rows, []any{id, render.FormatValue(state[id])})
		total += state[id]
	}
	summary := fmt.Sprintf("Shards: %d, total replicas: %d", len(shards), total)
	return tableResult(catalog.PanelAdmin, "", summary, Section{Table: tbl})
}

// apiAdmin is the JSON form of the admin buttons.
func (h *Handler) apiAdmin(c *gin.Context) {
	res := h.adminAction(c.Request.Context(), c.Param("action"))
	c.JSON(res.Status(), res)
}
