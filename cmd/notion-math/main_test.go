// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notion-math/internal/fix"
	"github.com/pdiddy/notion-math/internal/journal"
	"github.com/pdiddy/notion-math/internal/notion"
	"github.com/pdiddy/notion-math/pkg/types"
)

const pageID = "0123abcd-4567-89ef-0123-456789abcdef"

func testViper(t *testing.T, values map[string]any) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	loadedSecrets, loadedEnv = nil, nil
	t.Cleanup(func() { loadedSecrets, loadedEnv = nil, nil })
	return v
}

func TestLoadConfig(t *testing.T) {
	t.Run("values from viper", func(t *testing.T) {
		v := testViper(t, map[string]any{"token": "secret_v", "page_id": "0123abcd456789ef0123456789abcdef", "block_delay": "5ms"})
		cfg, err := loadConfig(v, nil)
		require.NoError(t, err)
		assert.Equal(t, "secret_v", cfg.Token)
		assert.Equal(t, pageID, cfg.PageID)
		assert.Equal(t, 5*time.Millisecond, cfg.BlockDelay)
		assert.True(t, cfg.Recursive)
		assert.Equal(t, types.DefaultNotionVersion, cfg.Version)
	})

	t.Run("falls back to secrets then dotenv", func(t *testing.T) {
		v := testViper(t, nil)
		loadedSecrets = map[string]string{"notion-token": "secret_file"}
		loadedEnv = map[string]string{"NOTION_TOKEN": "secret_env", "NOTION_PAGE_ID": pageID}
		cfg, err := loadConfig(v, nil)
		require.NoError(t, err)
		assert.Equal(t, "secret_file", cfg.Token)
		assert.Equal(t, pageID, cfg.PageID)
	})

	t.Run("page argument wins and accepts a URL", func(t *testing.T) {
		v := testViper(t, map[string]any{"token": "t", "page_id": "ffffffffffffffffffffffffffffffff"})
		cfg, err := loadConfig(v, []string{"https://www.notion.so/My-Notes-0123abcd456789ef0123456789abcdef"})
		require.NoError(t, err)
		assert.Equal(t, pageID, cfg.PageID)
	})

	t.Run("missing token", func(t *testing.T) {
		v := testViper(t, map[string]any{"page_id": pageID})
		_, err := loadConfig(v, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOTION_TOKEN")
	})

	t.Run("bad page id", func(t *testing.T) {
		v := testViper(t, map[string]any{"token": "t"})
		_, err := loadConfig(v, []string{"not-a-page"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a Notion page id")
	})
}

// fakeNotion serves one page with two paragraphs and records PATCH bodies.
type fakeNotion struct {
	mu      sync.Mutex
	patched map[string]string
	status  int
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"object":"error","status":%d,"code":"unauthorized","message":"API token is invalid."}`, f.status)
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/blocks/"+pageID+"/children":
		fmt.Fprint(w, `{"results":[
			{"id":"b1","type":"paragraph","paragraph":{"rich_text":[{"type":"text","text":{"content":"so $a+b$ holds"}}]}},
			{"id":"b2","type":"heading_1","heading_1":{"rich_text":[{"type":"text","text":{"content":"Intro"}}]}},
			{"id":"b3","type":"divider","divider":{}}
		],"has_more":false}`)
	case r.Method == http.MethodPatch:
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.patched[strings.TrimPrefix(r.URL.Path, "/v1/blocks/")] = string(data)
		f.mu.Unlock()
		fmt.Fprint(w, `{"object":"block"}`)
	default:
		http.NotFound(w, r)
	}
}

func fixTestConfig(t *testing.T, baseURL string) types.Config {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Token = "secret_test"
	cfg.PageID = pageID
	cfg.BaseURL = baseURL + "/v1"
	cfg.BlockDelay = 0
	cfg.JournalPath = filepath.Join(t.TempDir(), "journal.db")
	return cfg
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFixPage_UpdatesAndJournals(t *testing.T) {
	fake := &fakeNotion{patched: map[string]string{}}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	cfg := fixTestConfig(t, ts.URL)
	summary, err := fixPage(context.Background(), notion.NewClient(cfg), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, fix.Summary{Scanned: 3, Textual: 2, Changed: 1, Skipped: 1, Equations: 1}, summary)

	require.Contains(t, fake.patched, "b1")
	var body map[string]map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.patched["b1"]), &body))
	rich := body["paragraph"]["rich_text"]
	require.Len(t, rich, 3)
	assert.Equal(t, "equation", rich[1]["type"])

	j, err := journal.Open(cfg.JournalPath)
	require.NoError(t, err)
	defer j.Close()
	runs, err := j.Runs(context.Background(), journal.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Changed)
	assert.True(t, runs[0].Finished())
}

func TestFixPage_DryRunWithoutJournal(t *testing.T) {
	fake := &fakeNotion{patched: map[string]string{}}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	cfg := fixTestConfig(t, ts.URL)
	cfg.DryRun = true
	cfg.JournalPath = ""

	summary, err := fixPage(context.Background(), notion.NewClient(cfg), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Changed)
	assert.Empty(t, fake.patched)
}

func TestFixPage_UnauthorizedIsJournaled(t *testing.T) {
	fake := &fakeNotion{patched: map[string]string{}, status: http.StatusUnauthorized}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	cfg := fixTestConfig(t, ts.URL)
	_, err := fixPage(context.Background(), notion.NewClient(cfg), cfg, quietLogger())
	require.Error(t, err)
	assert.True(t, notion.IsUnauthorized(err))

	j, err := journal.Open(cfg.JournalPath)
	require.NoError(t, err)
	defer j.Close()
	runs, err := j.Runs(context.Background(), journal.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "HTTP 401")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, fix.Summary{Scanned: 4, Textual: 3, Skipped: 1, Changed: 2, Equations: 5}, false)
	assert.Contains(t, buf.String(), "updated: 2 block(s), equations: 5")

	buf.Reset()
	printSummary(&buf, fix.Summary{Changed: 2}, true)
	assert.Contains(t, buf.String(), "would update: 2 block(s)")
}

func TestFormatRuns(t *testing.T) {
	var buf bytes.Buffer
	formatRuns(&buf, nil)
	assert.Equal(t, "No runs recorded.\n", buf.String())

	buf.Reset()
	started := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	formatRuns(&buf, []journal.RunRecord{
		{ID: "r1", PageID: pageID, StartedAt: started, FinishedAt: started, Changed: 2, Equations: 3},
		{ID: "r2", PageID: pageID, StartedAt: started, Error: "boom"},
		{ID: "r3", PageID: pageID, StartedAt: started},
	})
	out := buf.String()
	assert.Contains(t, out, "failed: boom")
	assert.Contains(t, out, "incomplete")
	assert.Contains(t, out, "3 run(s)")
}

func TestFormatChanges(t *testing.T) {
	var buf bytes.Buffer
	formatChanges(&buf, []journal.ChangeRecord{
		{BlockID: "b1", BlockType: "paragraph", Before: "so $a$\nok", After: "so $a$ ok"},
	})
	out := buf.String()
	assert.Contains(t, out, "paragraph b1 (depth 0)")
	assert.Contains(t, out, "  - so $a$ ok")
	assert.Contains(t, out, "1 block(s)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
