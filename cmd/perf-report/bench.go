package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"animehub/internal/catalog"
)

// sampleParams feeds the widget-driven queries with the same inputs the
// user panel uses.
var sampleParams = catalog.Params{
	Genre:  catalog.UserGenre,
	Studio: catalog.UserStudio,
	Titles: catalog.FeaturedTitles,
}

type timing struct {
	Query catalog.QueryID
	Panel catalog.Panel
	Runs  int
	Min   time.Duration
	Avg   time.Duration
	Max   time.Duration
	Rows  int
}

// measure runs every catalog query runs times. clock is injectable for
// tests.
func measure(ctx context.Context, repo *catalog.Repo, runs int, clock func() time.Time) ([]timing, error) {
	if runs < 1 {
		return nil, fmt.Errorf("runs must be positive, got %d", runs)
	}

	var out []timing
	for _, def := range catalog.Definitions() {
		t := timing{Query: def.ID, Panel: def.Panel, Runs: runs}
		var total time.Duration
		for i := 0; i < runs; i++ {
			start := clock()
			recs, err := repo.Run(ctx, def.ID, sampleParams)
			took := clock().Sub(start)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", def.ID, err)
			}
			if i == 0 || took < t.Min {
				t.Min = took
			}
			t.Max = max(t.Max, took)
			total += took
			t.Rows = len(recs)
		}
		t.Avg = total / time.Duration(runs)
		out = append(out, t)
	}
	return out, nil
}

func writeReport(w io.Writer, timings []timing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"query", "panel", "runs", "min_ms", "avg_ms", "max_ms", "rows"}); err != nil {
		return err
	}
	for _, t := range timings {
		if err := cw.Write([]string{
			string(t.Query),
			string(t.Panel),
			strconv.Itoa(t.Runs),
			millis(t.Min),
			millis(t.Avg),
			millis(t.Max),
			strconv.Itoa(t.Rows),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func millis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 2, 64)
}
