package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"animehub/pkg/models"
)

// rowParser turns one CSV record into a document. A nil document with a nil
// error means the row is skipped.
type rowParser func(h header, row []string) (any, error)

type header map[string]int

func (h header) get(row []string, key string) string {
	idx, ok := h[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	h := make(header, len(row))
	for idx, name := range row {
		h[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return h, nil
}

// readDocs parses every record of a CSV stream with parse.
func readDocs(in io.Reader, parse rowParser) ([]any, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	h, err := readHeader(r)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var docs []any
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		doc, err := parse(h, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func parseAnime(h header, row []string) (any, error) {
	rawID, title := h.get(row, "mal_id"), h.get(row, "title")
	if rawID == "" || title == "" {
		return nil, nil
	}
	malID, err := parseInt(rawID)
	if err != nil {
		return nil, err
	}
	return models.Anime{
		MalID:    malID,
		Title:    title,
		StudioID: h.get(row, "studio_id"),
		GenresID: h.get(row, "genres_id"),
		DemoID:   h.get(row, "demo_id"),
		Status:   h.get(row, "status"),
		StartSeason: models.StartSeason{
			Year:   numberOrText(h.get(row, "start_season_year")),
			Season: h.get(row, "start_season_season"),
		},
	}, nil
}

func parseRanking(h header, row []string) (any, error) {
	rawID, title := h.get(row, "mal_id"), h.get(row, "title")
	if rawID == "" || title == "" {
		return nil, nil
	}
	malID, err := parseInt(rawID)
	if err != nil {
		return nil, err
	}
	e := models.RankingEntry{
		MalID:    malID,
		Title:    title,
		Rank:     numberOrText(h.get(row, "rank")),
		StudioID: h.get(row, "studio_id"),
		DemoID:   h.get(row, "demo_id"),
		GenresID: h.get(row, "genres_id"),
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{"popularity", &e.Popularity},
		{"statistics_completed", &e.StatsCompleted},
		{"statistics_on_hold", &e.StatsOnHold},
		{"statistics_dropped", &e.StatsDropped},
		{"statistics_num_scoring_users", &e.StatsScoringUsers},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(h.get(row, f.key)); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return e, nil
}

// lookupParser builds a parser for an (id, label) lookup collection.
func lookupParser(idKey, labelKey string, build func(id, label string) any) rowParser {
	return func(h header, row []string) (any, error) {
		id, label := h.get(row, idKey), h.get(row, labelKey)
		if id == "" || label == "" {
			return nil, nil
		}
		return build(id, label), nil
	}
}

var (
	parseGenre = lookupParser("genres_id", "genres_de", func(id, label string) any {
		return models.Genre{ID: id, Label: label}
	})
	parseStudio = lookupParser("studio_id", "studio_de", func(id, label string) any {
		return models.Studio{ID: id, Label: label}
	})
	parseDemographic = lookupParser("demo_id", "demo_de", func(id, label string) any {
		return models.Demographic{ID: id, Label: label}
	})
)

func parseInt(raw string) (int64, error) {
	// pandas exports integer columns with NaNs as floats ("21.0")
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f), nil
	}
	return 0, fmt.Errorf("parse int %q", raw)
}

func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// numberOrText keeps numeric cells numeric so $avg and $toInt work on them.
func numberOrText(raw string) any {
	if raw == "" {
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
