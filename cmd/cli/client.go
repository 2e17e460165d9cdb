package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"animehub/internal/catalog"
	"animehub/internal/dashboard"
)

type apiClient struct {
	base string
	http *http.Client
}

type queryItem struct {
	catalog.Definition
	HasChart bool `json:"has_chart"`
}

type queryList struct {
	Items []queryItem `json:"items"`
}

func (c *apiClient) queries(ctx context.Context, panel string) ([]queryItem, error) {
	endpoint := c.base + "/api/queries"
	if panel != "" {
		endpoint += "?panel=" + url.QueryEscape(panel)
	}
	var out queryList
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *apiClient) run(ctx context.Context, id catalog.QueryID, p catalog.Params) (dashboard.Result, error) {
	var res dashboard.Result
	err := c.doJSON(ctx, http.MethodPost, c.base+"/api/queries/"+url.PathEscape(string(id)), p, &res)
	return res, err
}

func (c *apiClient) admin(ctx context.Context, action string) (dashboard.Result, error) {
	var res dashboard.Result
	err := c.doJSON(ctx, http.MethodGet, c.base+"/api/admin/"+url.PathEscape(action), nil, &res)
	return res, err
}

func (c *apiClient) chart(ctx context.Context, id catalog.QueryID, w io.Writer) error {
	endpoint := c.base + "/analyst/chart/" + url.PathEscape(string(id)) + ".png"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return apiError(http.MethodGet, endpoint, resp.StatusCode, data)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *apiClient) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return apiError(method, endpoint, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// apiError prefers the "error" field of a JSON error body.
func apiError(method, endpoint string, status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return fmt.Errorf("%s %s: %d: %s", method, endpoint, status, msg)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func printQueries(w io.Writer, items []queryItem) {
	t := newTable("ID", "Panel", "Input", "Chart", "Label")
	for _, it := range items {
		chart := ""
		if it.HasChart {
			chart = "yes"
		}
		t.Row(string(it.ID), string(it.Panel), string(it.Input), chart, it.Label)
	}
	fmt.Fprintln(w, t.Render())
}

// printResult writes the summary and tables of res. An error result is
// returned as an error.
func printResult(w io.Writer, res dashboard.Result) error {
	if res.Kind == dashboard.KindError {
		return errors.New(res.Error)
	}
	if res.Summary != "" {
		fmt.Fprintln(w, res.Summary)
	}
	for _, s := range res.Sections {
		if s.Title != "" {
			fmt.Fprintln(w, s.Title)
		}
		if s.Table == nil {
			continue
		}
		t := newTable(s.Table.Columns...)
		for _, row := range s.Table.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				if v != nil {
					cells[i] = fmt.Sprint(v)
				}
			}
			t.Row(cells...)
		}
		fmt.Fprintln(w, t.Render())
	}
	if res.Chart != nil {
		fmt.Fprintf(w, "chart available: animehub chart %s\n", res.Query)
	}
	return nil
}
