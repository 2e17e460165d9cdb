package inspect

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"animehub/internal/render"
)

// Metadata is the administrative surface of the database.
type Metadata interface {
	ListCollectionNames(ctx context.Context) ([]string, error)
	CollectionStats(ctx context.Context, name string) (bson.M, error)
	IndexSpecs(ctx context.Context, name string) ([]bson.M, error)
	ListShards(ctx context.Context) ([]bson.M, error)
}

type Inspector struct {
	Meta Metadata
	Log  *zap.Logger
}

func NewInspector(meta Metadata, logger *zap.Logger) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{Meta: meta, Log: logger}
}

// statFields maps a displayed statistic to its collStats key.
var statFields = []struct {
	label string
	key   string
}{
	{"Size", "size"},
	{"Document Count", "count"},
	{"Average Object Size", "avgObjSize"},
	{"Storage Size", "storageSize"},
	{"Number of Indexes", "nindexes"},
	{"Total Index Size", "totalIndexSize"},
}

type CollectionStats struct {
	Collection string        `json:"collection"`
	Table      *render.Table `json:"table"`
}

func (i *Inspector) collectionNames(ctx context.Context) ([]string, error) {
	names, err := i.Meta.ListCollectionNames(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// CollectionStats returns one (Statistic, Value) table per collection.
func (i *Inspector) CollectionStats(ctx context.Context) ([]CollectionStats, error) {
	names, err := i.collectionNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CollectionStats, 0, len(names))
	for _, name := range names {
		stats, err := i.Meta.CollectionStats(ctx, name)
		if err != nil {
			return nil, err
		}
		tbl := &render.Table{
			Columns: []string{"Statistic", "Value"},
			Rows:    [][]any{{"Collection", name}},
		}
		for _, f := range statFields {
			tbl.Rows = append(tbl.Rows, []any{f.label, render.FormatValue(stats[f.key])})
		}
		out = append(out, CollectionStats{Collection: name, Table: tbl})
	}
	return out, nil
}

// Indexes returns a table with one row per collection and one column per
// index name; a cell holds the index key pattern.
func (i *Inspector) Indexes(ctx context.Context) (*render.Table, error) {
	names, err := i.collectionNames(ctx)
	if err != nil {
		return nil, err
	}

	byCollection := make(map[string]map[string]string, len(names))
	seen := map[string]bool{}
	var indexNames []string
	for _, name := range names {
		specs, err := i.Meta.IndexSpecs(ctx, name)
		if err != nil {
			return nil, err
		}
		cells := map[string]string{}
		for _, spec := range specs {
			idx, _ := spec["name"].(string)
			if idx == "" {
				continue
			}
			cells[idx] = describeIndex(spec)
			if !seen[idx] {
				seen[idx] = true
				indexNames = append(indexNames, idx)
			}
		}
		byCollection[name] = cells
	}
	sort.Strings(indexNames)

	tbl := &render.Table{
		Columns: append([]string{"Collection"}, indexNames...),
		Rows:    make([][]any, 0, len(names)),
	}
	for _, name := range names {
		row := []any{name}
		for _, idx := range indexNames {
			if cell, ok := byCollection[name][idx]; ok {
				row = append(row, cell)
			} else {
				row = append(row, nil)
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

func describeIndex(spec bson.M) string {
	var parts []string
	switch key := spec["key"].(type) {
	case bson.D:
		for _, e := range key {
			parts = append(parts, fmt.Sprintf("%s: %v", e.Key, render.FormatValue(e.Value)))
		}
	case bson.M:
		fields := make([]string, 0, len(key))
		for f := range key {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s: %v", f, render.FormatValue(key[f])))
		}
	}
	desc := "{" + strings.Join(parts, ", ") + "}"
	if unique, _ := spec["unique"].(bool); unique {
		desc += " unique"
	}
	return desc
}

// PerformanceReport loads the query performance CSV as-is. The first record
// holds the column names.
func (i *Inspector) PerformanceReport(path string) (*render.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open performance report: %w", err)
	}
	defer f.Close()
	return ReadReport(f)
}

func ReadReport(r io.Reader) (*render.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &render.Table{Rows: [][]any{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report header: %w", err)
	}

	tbl := &render.Table{Columns: header, Rows: [][]any{}}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read report row: %w", err)
		}
		row := make([]any, len(header))
		for j := range row {
			if j < len(rec) {
				row[j] = rec[j]
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

// ClusterState maps shard id to replica count. Failures are logged and
// returned alongside an empty, non-nil map.
func (i *Inspector) ClusterState(ctx context.Context) (map[string]int, error) {
	state := map[string]int{}
	shards, err := i.Meta.ListShards(ctx)
	if err != nil {
		i.Log.Warn("cluster state unavailable", zap.Error(err))
		return state, fmt.Errorf("fetch cluster state: %w", err)
	}
	for _, shard := range shards {
		id := fmt.Sprint(shard["_id"])
		host, _ := shard["host"].(string)
		state[id] = ReplicaCount(host)
	}
	return state, nil
}

// ReplicaCount counts the members of a shard host string of the form
// "rs0/host1:27017,host2:27017". A host without a replica set name is a
// single member.
func ReplicaCount(host string) int {
	_, members, found := strings.Cut(host, "/")
	if !found {
		return 1
	}
	n := 0
	for _, m := range strings.Split(members, ",") {
		if strings.TrimSpace(m) != "" {
			n++
		}
	}
	return max(n, 1)
}
