// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Authors    []atomAuthor   `xml:"author"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// documents converts feed entries to Documents. A malformed or missing
// field in one entry degrades that entry to a default value rather than
// aborting the parse; only entries with no usable identifier at all are
// dropped. Duplicate identifiers within one response keep the first
// occurrence.
func (f atomFeed) documents() []types.Document {
	docs := make([]types.Document, 0, len(f.Entries))
	seen := make(map[string]bool, len(f.Entries))

	for _, entry := range f.Entries {
		id := extractID(entry.ID)
		if id == "" {
			id = strings.TrimSpace(entry.ID)
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		d := types.Document{
			ID:       id,
			Title:    strings.TrimSpace(entry.Title),
			Abstract: strings.TrimSpace(entry.Summary),
			ArxivURL: "https://arxiv.org/abs/" + id,
			PDFURL:   "https://arxiv.org/pdf/" + id + ".pdf",
		}

		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				d.Authors = append(d.Authors, name)
			}
		}

		for _, cat := range entry.Categories {
			if cat.Term != "" {
				d.Categories = append(d.Categories, cat.Term)
			}
		}

		// An unparseable date degrades to the zero time.
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.Published)); err == nil {
			d.Published = t
		}

		docs = append(docs, d)
	}

	return docs
}

// extractID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
