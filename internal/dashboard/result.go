package dashboard

import (
	"errors"
	"fmt"
	"net/http"

	"animehub/internal/catalog"
	"animehub/internal/render"
)

// Kind tags what a panel interaction produced.
type Kind string

const (
	KindNone       Kind = "none"
	KindTable      Kind = "table"
	KindTableChart Kind = "table_chart"
	KindError      Kind = "error"
)

type Section struct {
	Title string        `json:"title,omitempty"`
	Table *render.Table `json:"table"`
}

// Result is the response of one panel interaction.
type Result struct {
	Kind     Kind            `json:"kind"`
	Panel    catalog.Panel   `json:"panel"`
	Query    catalog.QueryID `json:"query,omitempty"`
	Summary  string          `json:"summary,omitempty"`
	Sections []Section       `json:"sections,omitempty"`
	Chart    *render.Chart   `json:"chart,omitempty"`
	Error    string          `json:"error,omitempty"`

	err error
}

func noneResult(panel catalog.Panel) Result {
	return Result{Kind: KindNone, Panel: panel}
}

func errorResult(panel catalog.Panel, id catalog.QueryID, err error) Result {
	return Result{Kind: KindError, Panel: panel, Query: id, Error: err.Error(), err: err}
}

func tableResult(panel catalog.Panel, id catalog.QueryID, summary string, sections ...Section) Result {
	return Result{Kind: KindTable, Panel: panel, Query: id, Summary: summary, Sections: sections}
}

// Rows counts rows across every section.
func (r Result) Rows() int {
	n := 0
	for _, s := range r.Sections {
		n += s.Table.Len()
	}
	return n
}

// Status maps the result to an HTTP status. Error results without a cause
// are inline notices and keep 200.
func (r Result) Status() int {
	if r.Kind != KindError || r.err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(r.err, catalog.ErrLookupMiss), errors.Is(r.err, ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(r.err, catalog.ErrUnknownQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// summaryLine is the line shown above a query result.
func summaryLine(def catalog.Definition, p catalog.Params, n int) string {
	if def.Panel == catalog.PanelUser {
		if n == 0 {
			return "No result found"
		}
		return fmt.Sprintf("Number of results : %d", n)
	}
	switch def.ID {
	case catalog.GenrePopular:
		return fmt.Sprintf("Results for genre '%s': %d", p.Genre, n)
	case catalog.StudioFinished:
		return fmt.Sprintf("Results for studio '%s': %d", p.Studio, n)
	case catalog.TitleRanks:
		return "Results for selected titles sorted by Rank"
	case catalog.TitleDemographics:
		return fmt.Sprintf("Results for selected titles: %d", n)
	case catalog.SeasonPopularity:
		return fmt.Sprintf("Number of results : %d, sorted by Year", n)
	default:
		return fmt.Sprintf("Number of results : %d", n)
	}
}
