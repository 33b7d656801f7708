// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v2</id>
    <title>  Surface Codes for Quantum Error Correction  </title>
    <summary>
      We study surface codes for fault-tolerant quantum computation.
    </summary>
    <published>2023-01-17T14:00:00Z</published>
    <author><name>Alice Example</name></author>
    <author><name>Bob Sample</name></author>
    <category term="quant-ph"/>
    <category term="cs.IT"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2301.08888v1</id>
    <title>Entanglement Distillation Revisited</title>
    <summary>A second paper.</summary>
    <published>2023-01-18T09:30:00Z</published>
    <author><name>Carol Test</name></author>
    <category term="quant-ph"/>
  </entry>
</feed>`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <totalResults>0</totalResults>
</feed>`

// degradedFeed exercises per-entry degradation: entry one has no title
// and a garbage date, entry two has no identifier at all, entry three
// duplicates entry one's identifier.
const degradedFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2302.00001v1</id>
    <summary>Abstract without a title.</summary>
    <published>not-a-date</published>
  </entry>
  <entry>
    <title>No Identifier Here</title>
    <summary>This entry cannot be referenced.</summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.00001v3</id>
    <title>Duplicate Identifier</title>
  </entry>
</feed>`

func testClient(t *testing.T, handler http.HandlerFunc, cfg types.RetrievalConfig) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })

	return NewClient(cfg)
}

func feedHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, body)
	}
}

func TestSearch_ParsesFeed(t *testing.T) {
	c := testClient(t, feedHandler(sampleFeed), types.RetrievalConfig{})

	docs, err := c.Search(context.Background(), Request{Query: "quantum error correction"})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	d := docs[0]
	assert.Equal(t, "2301.07041", d.ID)
	assert.Equal(t, "Surface Codes for Quantum Error Correction", d.Title)
	assert.Equal(t, []string{"Alice Example", "Bob Sample"}, d.Authors)
	assert.Equal(t, []string{"quant-ph", "cs.IT"}, d.Categories)
	assert.Equal(t, "https://arxiv.org/abs/2301.07041", d.ArxivURL)
	assert.Equal(t, "https://arxiv.org/pdf/2301.07041.pdf", d.PDFURL)
	assert.Equal(t, time.Date(2023, 1, 17, 14, 0, 0, 0, time.UTC), d.Published)
	assert.Contains(t, d.Abstract, "surface codes")
}

func TestSearch_EmptyFeedIsNotAnError(t *testing.T) {
	c := testClient(t, feedHandler(emptyFeed), types.RetrievalConfig{})

	docs, err := c.Search(context.Background(), Request{Query: "nothing matches this"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSearch_MalformedEntriesDegrade(t *testing.T) {
	c := testClient(t, feedHandler(degradedFeed), types.RetrievalConfig{})

	docs, err := c.Search(context.Background(), Request{Query: "anything"})
	require.NoError(t, err)

	// Entry without an identifier is dropped, duplicate identifier keeps
	// the first occurrence.
	require.Len(t, docs, 1)
	assert.Equal(t, "2302.00001", docs[0].ID)
	assert.Empty(t, docs[0].Title)
	assert.True(t, docs[0].Published.IsZero())
	assert.Equal(t, "Abstract without a title.", docs[0].Abstract)
}

func TestSearch_RequestParameters(t *testing.T) {
	var gotQuery, gotSort, gotMax string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		gotSort = r.URL.Query().Get("sortBy")
		gotMax = r.URL.Query().Get("max_results")
		fmt.Fprint(w, emptyFeed)
	}, types.RetrievalConfig{})

	_, err := c.Search(context.Background(), Request{
		Query:      "quantum error correction",
		Categories: []string{"quant-ph"},
		MaxResults: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, "cat:quant-ph AND (quantum error correction)", gotQuery)
	assert.Equal(t, "submittedDate", gotSort)
	assert.Equal(t, "7", gotMax)
}

func TestSearch_MaxResultsClamped(t *testing.T) {
	var gotMax string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMax = r.URL.Query().Get("max_results")
		fmt.Fprint(w, emptyFeed)
	}, types.RetrievalConfig{})

	_, err := c.Search(context.Background(), Request{Query: "q", MaxResults: 500})
	require.NoError(t, err)
	assert.Equal(t, "50", gotMax)
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	c := NewClient(types.RetrievalConfig{})
	_, err := c.Search(context.Background(), Request{})
	assert.Error(t, err)
}

func TestSearch_CooldownSeparatesRequests(t *testing.T) {
	const cooldown = 60 * time.Millisecond

	var mu sync.Mutex
	var arrivals []time.Time
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		fmt.Fprint(w, emptyFeed)
	}, types.RetrievalConfig{Cooldown: cooldown})

	// Two concurrent callers must still be serialized by the shared
	// cooldown timer.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Search(context.Background(), Request{Query: "q"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, arrivals, 2)
	gap := arrivals[1].Sub(arrivals[0])
	if gap < 0 {
		gap = -gap
	}
	assert.GreaterOrEqual(t, gap, cooldown)
}

func TestSearch_RateLimitRetryObservesCooldown(t *testing.T) {
	const cooldown = 60 * time.Millisecond

	var mu sync.Mutex
	var arrivals []time.Time
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, emptyFeed)
	}, types.RetrievalConfig{Cooldown: cooldown, MaxRetries: 3})

	// First call hits a 503 and retries; the retry must wait out the
	// cooldown like any other outbound request.
	_, err := c.Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	// A follow-up call must also keep its distance from the retry.
	_, err = c.Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	require.Len(t, arrivals, 3)
	assert.GreaterOrEqual(t, arrivals[1].Sub(arrivals[0]), cooldown)
	assert.GreaterOrEqual(t, arrivals[2].Sub(arrivals[1]), cooldown)
}

func TestSearch_RateLimitUsesSingleRetryBudget(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, types.RetrievalConfig{MaxRetries: 2})

	_, err := c.Search(context.Background(), Request{Query: "q"})
	require.ErrorIs(t, err, ErrUnavailable)

	// A persistently rate-limited feed sees exactly MaxRetries+1
	// requests, not a nested multiple of it.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearch_UnavailableAfterRetries(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, types.RetrievalConfig{MaxRetries: 2})

	_, err := c.Search(context.Background(), Request{Query: "q"})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearch_Timeout(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, emptyFeed)
	}, types.RetrievalConfig{HTTPConfig: types.HTTPConfig{Timeout: 20 * time.Millisecond}})

	_, err := c.Search(context.Background(), Request{Query: "q"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"query only", Request{Query: "quantum error correction"}, "quantum error correction"},
		{"category only", Request{Categories: []string{"quant-ph"}}, "cat:quant-ph"},
		{
			"category and query",
			Request{Query: "surface codes", Categories: []string{"quant-ph"}},
			"cat:quant-ph AND (surface codes)",
		},
		{
			"multiple categories",
			Request{Query: "codes", Categories: []string{"quant-ph", "cs.IT"}},
			"(cat:quant-ph OR cat:cs.IT) AND (codes)",
		},
		{"empty", Request{}, ""},
		{"whitespace query", Request{Query: "   "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildSearchQuery(tt.req))
		})
	}
}
