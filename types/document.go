package types

import "time"

// CrawlDump is the on-disk output of a site crawl.
type CrawlDump struct {
	Pages []Page `json:"pages"`
}

// Page is a single crawled web page.
type Page struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Element is one chunk returned by the partitioning service, stamped with
// the page it came from.
type Element struct {
	Text      string                 `json:"text"`
	Type      string                 `json:"type"`
	ElementID string                 `json:"element_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`

	SourceURL   string    `json:"source_url"`
	SourceTitle string    `json:"source_title"`
	Index       int       `json:"index"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Record is the flat object written to the vector store.
type Record struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	DocName    string `json:"doc_name"`
	DocType    string `json:"doc_type"`
	DocLink    string `json:"doc_link"`
	ChunkID    string `json:"chunk_id"`
	ChunkIndex int    `json:"chunk_index"`
	Type       string `json:"type"`
	Source     string `json:"source"`
}

// Properties returns the record in the property shape the store expects.
func (r Record) Properties() map[string]interface{} {
	return map[string]interface{}{
		"title":       r.Title,
		"text":        r.Text,
		"doc_name":    r.DocName,
		"doc_type":    r.DocType,
		"doc_link":    r.DocLink,
		"chunk_id":    r.ChunkID,
		"chunk_index": r.ChunkIndex,
		"type":        r.Type,
		"source":      r.Source,
	}
}
