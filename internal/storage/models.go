package storage

import (
	"strings"
	"time"
)

// NoContentMarker replaces the text of a heading whose section collected nothing
const NoContentMarker = "No content in this section"

// UntitledPage is used as the record title when a page has none
const UntitledPage = "Untitled Page"

// Section is one heading-delimited block of page text.
// Header is empty for the unheaded fallback block.
type Section struct {
	Header string `json:"header,omitempty"`
	Text   string `json:"text"`
}

// IsEmpty reports whether the section carries no usable text
func (s Section) IsEmpty() bool {
	text := strings.TrimSpace(s.Text)
	return text == "" || text == NoContentMarker
}

// AllEmpty reports whether every section is empty (true for no sections)
func AllEmpty(sections []Section) bool {
	for _, s := range sections {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// ContentRecord is the persisted unit of output for one processed page
type ContentRecord struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Sections []Section `json:"content"`
}

// Link is a directed same-domain edge between two canonical page URLs
type Link struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

// CrawlStats holds the per-run page counters
type CrawlStats struct {
	Processed    int `json:"processed"`
	Skipped      int `json:"skipped"`
	EmptyContent int `json:"empty_content"`
}

// Result is everything a finished crawl run hands to a Sink
type Result struct {
	SeedURL  string          `json:"seed_url"`
	Records  []ContentRecord `json:"records"`
	Stats    CrawlStats      `json:"stats"`
	Links    []Link          `json:"links,omitempty"`
	Visited  int             `json:"visited"`
	Pending  int             `json:"pending"`
	Finished time.Time       `json:"finished"`
}

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Processed         int       `json:"processed"`
	Skipped           int       `json:"skipped"`
	EmptyContent      int       `json:"empty_content"`
	PagesFetched      int       `json:"pages_fetched"`
	PagesFailed       int       `json:"pages_failed"`
	LinksDiscovered   int       `json:"links_discovered"`
	TotalFetchTimeMs  int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs    int64     `json:"avg_fetch_time_ms"`
	TerminationReason string    `json:"termination_reason"`
}
