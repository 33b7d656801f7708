// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-triage/internal/archive"
)

func TestPrintRunLog(t *testing.T) {
	runs := []archive.RunRecord{
		{
			SessionID:     "alice",
			Query:         "quantum error correction",
			Status:        "complete",
			DocumentCount: 3,
			Elapsed:       1200 * time.Millisecond,
			CreatedAt:     time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	printRunLog(&buf, runs)
	out := buf.String()
	assert.Contains(t, out, "12:30:00")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "3 paper(s)")
	assert.Contains(t, out, `"quantum error correction"`)

	buf.Reset()
	printRunLog(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestExportRuns(t *testing.T) {
	arch, err := archive.NewStore()
	require.NoError(t, err)
	defer arch.Close()

	require.NoError(t, arch.Record(archive.RunRecord{
		SessionID: "alice",
		Query:     "decoders",
		Status:    "complete",
		CreatedAt: time.Now(),
	}))

	path := filepath.Join(t.TempDir(), "runs.yaml")
	require.NoError(t, exportRuns(path, arch))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session_id: alice")
	assert.Contains(t, string(data), "query: decoders")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a , b ,"))
	assert.Equal(t, []string{"quant-ph"}, splitList("quant-ph"))
	assert.Empty(t, splitList("  ,  "))
}
