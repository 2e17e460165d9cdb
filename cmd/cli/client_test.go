package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/internal/catalog"
)

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/queries", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "analyst", r.URL.Query().Get("panel"))
		_, _ = w.Write([]byte(`{"items":[{"id":"top_studios","panel":"analyst","label":"Top 5 Studios by Average Anime Rankings","columns":["Studio","Average Rank"],"has_chart":true}]}`))
	})
	mux.HandleFunc("POST /api/queries/studio_finished", func(w http.ResponseWriter, r *http.Request) {
		var p catalog.Params
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "Madhouse", p.Studio)
		_, _ = w.Write([]byte(`{"kind":"table","panel":"analyst","query":"studio_finished","summary":"Results for studio 'Madhouse': 1","sections":[{"table":{"columns":["title","studio"],"rows":[["Monster","Madhouse"]]}}]}`))
	})
	mux.HandleFunc("POST /api/queries/genre_popular", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"kind":"error","panel":"analyst","error":"genres_de \"Isekai\" in genres_l: lookup miss"}`))
	})
	mux.HandleFunc("GET /api/admin/cluster", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"kind":"error","panel":"admin","error":"Error fetching cluster state: not sharded"}`))
	})
	mux.HandleFunc("GET /analyst/chart/top_studios.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestQueriesCommand(t *testing.T) {
	srv := newFakeAPI(t)

	out, err := execCLI(t, srv, "queries", "--panel", "analyst")
	require.NoError(t, err)
	assert.Contains(t, out, "top_studios")
	assert.Contains(t, out, "yes")
}

func TestRunCommandPrintsTable(t *testing.T) {
	srv := newFakeAPI(t)

	out, err := execCLI(t, srv, "run", "studio_finished", "--studio", "Madhouse")
	require.NoError(t, err)
	assert.Contains(t, out, "Results for studio 'Madhouse': 1")
	assert.Contains(t, out, "Monster")
	assert.Contains(t, out, "studio")
}

func TestRunCommandSurfacesAPIError(t *testing.T) {
	srv := newFakeAPI(t)

	_, err := execCLI(t, srv, "run", "genre_popular", "--genre", "Isekai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup miss")
	assert.Contains(t, err.Error(), "404")
}

func TestAdminInlineErrorIsReturned(t *testing.T) {
	srv := newFakeAPI(t)

	_, err := execCLI(t, srv, "admin", "cluster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error fetching cluster state")
}

func TestAdminRejectsUnknownAction(t *testing.T) {
	srv := newFakeAPI(t)

	_, err := execCLI(t, srv, "admin", "shutdown")
	assert.Error(t, err)
}

func TestChartCommandWritesFile(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "studios.png")

	out, err := execCLI(t, srv, "chart", "top_studios", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(data))
}

func TestChartCommandRemovesFileOnError(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "missing.png")

	_, err := execCLI(t, srv, "chart", "genre_engagement", "-o", path)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}
