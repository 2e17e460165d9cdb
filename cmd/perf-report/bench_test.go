package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"animehub/internal/catalog"
	"animehub/internal/inspect"
)

type benchStore struct {
	aggErr error
}

func (s benchStore) Aggregate(context.Context, string, mongo.Pipeline) ([]bson.M, error) {
	if s.aggErr != nil {
		return nil, s.aggErr
	}
	return []bson.M{{"title": "x"}, {"title": "y"}}, nil
}

func (s benchStore) FindOne(_ context.Context, _ string, filter bson.D) (bson.M, error) {
	return bson.M{"genres_id": "2", "studio_id": "S1", "label": filter[0].Value}, nil
}

func (s benchStore) Distinct(context.Context, string, string) ([]any, error) {
	return nil, nil
}

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestMeasureCoversCatalog(t *testing.T) {
	timings, err := measure(context.Background(), catalog.NewRepo(benchStore{}), 3, stepClock(time.Millisecond))
	require.NoError(t, err)
	require.Len(t, timings, len(catalog.Definitions()))

	for _, tm := range timings {
		assert.Equal(t, 3, tm.Runs)
		assert.Equal(t, time.Millisecond, tm.Min)
		assert.Equal(t, time.Millisecond, tm.Avg)
		assert.Equal(t, time.Millisecond, tm.Max)
		assert.Equal(t, 2, tm.Rows, tm.Query)
	}
}

func TestMeasureRejectsZeroRuns(t *testing.T) {
	_, err := measure(context.Background(), catalog.NewRepo(benchStore{}), 0, time.Now)
	assert.Error(t, err)
}

func TestMeasurePropagatesQueryError(t *testing.T) {
	_, err := measure(context.Background(), catalog.NewRepo(benchStore{aggErr: errors.New("boom")}), 1, time.Now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(catalog.UserAdventurePopular))
}

func TestReportRoundTripsThroughInspector(t *testing.T) {
	timings := []timing{{
		Query: catalog.TopStudios, Panel: catalog.PanelAnalyst, Runs: 4,
		Min: 1500 * time.Microsecond, Avg: 2 * time.Millisecond, Max: 3250 * time.Microsecond, Rows: 5,
	}}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, timings))

	tbl, err := inspect.ReadReport(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"query", "panel", "runs", "min_ms", "avg_ms", "max_ms", "rows"}, tbl.Columns)
	assert.Equal(t, [][]any{{"top_studios", "analyst", "4", "1.50", "2.00", "3.25", "5"}}, tbl.Rows)
}
