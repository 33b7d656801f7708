// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Document holds the metadata of one arXiv paper as returned by the feed.
// A Document is immutable once retrieved within a pipeline run.
type Document struct {
	// ID is the arXiv identifier (e.g. "2301.07041"), unique within one
	// retrieval result.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title, whitespace-trimmed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in feed order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Categories lists the arXiv category tags (e.g. "quant-ph").
	Categories []string `json:"categories" yaml:"categories"`

	// ArxivURL is the abstract page locator.
	ArxivURL string `json:"arxiv_url" yaml:"arxiv_url"`

	// PDFURL is the direct PDF locator.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Published is the submission timestamp. Zero when the feed entry
	// carried no parseable date.
	Published time.Time `json:"published" yaml:"published"`
}
