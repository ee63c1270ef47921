package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codebase-docgen/internal/config"
	"codebase-docgen/internal/errs"
	"codebase-docgen/test/mocks"
)

// hub is a minimal content API recording title -> ancestor id.
type hub struct {
	mu      sync.Mutex
	ids     map[string]string
	parents map[string]string
}

func newHub(t *testing.T) (*hub, *httptest.Server) {
	h := &hub{ids: map[string]string{}, parents: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			results := []any{}
			if id, ok := h.ids[r.URL.Query().Get("title")]; ok {
				results = append(results, map[string]any{"id": id, "version": map[string]any{"number": 1}})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
		case http.MethodPost:
			var in struct {
				Title     string `json:"title"`
				Ancestors []struct {
					ID string `json:"id"`
				} `json:"ancestors"`
			}
			_ = json.NewDecoder(r.Body).Decode(&in)
			id := strconv.Itoa(len(h.ids) + 1)
			h.ids[in.Title] = id
			if len(in.Ancestors) > 0 {
				h.parents[in.Title] = in.Ancestors[0].ID
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "version": map[string]any{"number": 1}})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return h, srv
}

func newLLM(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"h1. Generated"}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func publishConfig(workspace, llmURL, hubURL string) config.Config {
	cfg := config.DefaultConfig
	cfg.Summarizer.APIKey = "key"
	cfg.Summarizer.BaseURL = llmURL
	cfg.Summarizer.RetryDelay = time.Millisecond
	cfg.PageStore.BaseURL = hubURL
	cfg.PageStore.Email = "bot@example.com"
	cfg.PageStore.APIToken = "token"
	cfg.PageStore.SpaceKey = "DOC"
	cfg.PageStore.RetryDelay = time.Millisecond
	cfg.Publish.Workspace = workspace
	cfg.Publish.RootTitle = "Docs"
	return cfg
}

func TestRunPublishEndToEnd(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "app", "utils"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "app", "main.py"), []byte("print(1)"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "app", "utils", "helpers.py"), []byte("def h(): pass"), 0644))

	h, hubSrv := newHub(t)
	cfg := publishConfig(ws, newLLM(t).URL, hubSrv.URL)
	cfg.Publish.MetricsFile = filepath.Join(t.TempDir(), "docgen.prom")

	require.NoError(t, runPublish(context.Background(), cfg, &mocks.MockLogger{}))

	root := h.ids["Docs"]
	require.NotEmpty(t, root)
	assert.Equal(t, map[string]string{
		"Docs: main.py":          root,
		"Docs: utils":            root,
		"Docs: utils/helpers.py": h.ids["Docs: utils"],
	}, h.parents)

	prom, err := os.ReadFile(cfg.Publish.MetricsFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(prom), `docgen_publish_pages_total{outcome="created"} 4`), string(prom))
}

func TestRunPublishFailures(t *testing.T) {
	_, hubSrv := newHub(t)
	llm := newLLM(t)

	t.Run("summarizer cannot initialize", func(t *testing.T) {
		cfg := publishConfig(t.TempDir(), llm.URL, hubSrv.URL)
		cfg.Summarizer.Model = ""
		err := runPublish(context.Background(), cfg, &mocks.MockLogger{})
		assert.ErrorContains(t, err, "failed to initialize summarizer")
	})

	t.Run("code root is not a directory", func(t *testing.T) {
		ws := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(ws, "app"), []byte("x"), 0644))
		err := runPublish(context.Background(), publishConfig(ws, llm.URL, hubSrv.URL), &mocks.MockLogger{})
		assert.ErrorIs(t, err, errs.ErrNotADirectory)
	})

	t.Run("root page rejected", func(t *testing.T) {
		ws := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(ws, "app"), 0755))
		denied := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer denied.Close()
		err := runPublish(context.Background(), publishConfig(ws, llm.URL, denied.URL), &mocks.MockLogger{})
		assert.ErrorIs(t, err, errs.ErrRootPageFailed)
	})
}

func TestPublishCommandMissingConfig(t *testing.T) {
	for _, name := range []string{"OPENAI_API_KEY", "CONFLUENCE_URL", "CONFLUENCE_EMAIL", "CONFLUENCE_API_TOKEN", "CONFLUENCE_SPACE_KEY"} {
		t.Setenv(name, "")
	}
	t.Setenv("CONFLUENCE_URL", "https://example.atlassian.net/wiki")

	rootCmd.SetArgs([]string{"publish"})
	err := Execute()

	var missing *errs.MissingConfigError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, []string{"OPENAI_API_KEY", "CONFLUENCE_EMAIL", "CONFLUENCE_API_TOKEN", "CONFLUENCE_SPACE_KEY"}, missing.Names)
}

func TestFormatBuildDate(t *testing.T) {
	assert.Equal(t, "2024-01-01", formatBuildDate("1704067200"))
	assert.Equal(t, "unknown", formatBuildDate("unknown"))
}
