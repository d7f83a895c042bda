package types

// ItemResult is the outcome of writing one record.
type ItemResult struct {
	Index int
	ID    string
	Err   error
}

func (r ItemResult) OK() bool { return r.Err == nil }

// BatchResult aggregates the outcome of one batch upload.
type BatchResult struct {
	Succeeded int
	Failed    int
	Items     []ItemResult
}

func (b *BatchResult) Add(item ItemResult) {
	if item.OK() {
		b.Succeeded++
	} else {
		b.Failed++
	}
	b.Items = append(b.Items, item)
}

// Errors returns the failed items only.
func (b BatchResult) Errors() []ItemResult {
	var failed []ItemResult
	for _, item := range b.Items {
		if !item.OK() {
			failed = append(failed, item)
		}
	}
	return failed
}

// PageStatus describes what happened to a page during ingestion.
type PageStatus string

const (
	PageProcessed PageStatus = "processed"
	PageSkipped   PageStatus = "skipped"
	PageFailed    PageStatus = "failed"
)

// PageResult is the outcome of chunking one page.
type PageResult struct {
	URL      string
	Status   PageStatus
	Elements int
	Err      error
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	RunID           string `json:"run_id"`
	PagesTotal      int    `json:"pages_total"`
	PagesAttempted  int    `json:"pages_attempted"`
	PagesProcessed  int    `json:"pages_processed"`
	PagesSkipped    int    `json:"pages_skipped"`
	PagesFailed     int    `json:"pages_failed"`
	Chunks          int    `json:"chunks"`
	RecordsUploaded int    `json:"records_uploaded"`
	RecordsFailed   int    `json:"records_failed"`
	Batches         int    `json:"batches"`
}

func (r *IngestReport) AddPage(p PageResult) {
	r.PagesAttempted++
	switch p.Status {
	case PageProcessed:
		r.PagesProcessed++
		r.Chunks += p.Elements
	case PageSkipped:
		r.PagesSkipped++
	case PageFailed:
		r.PagesFailed++
	}
}

func (r *IngestReport) AddBatch(b BatchResult) {
	r.Batches++
	r.RecordsUploaded += b.Succeeded
	r.RecordsFailed += b.Failed
}

// DropRecords counts records that were built but never sent as failed.
func (r *IngestReport) DropRecords(n int) {
	r.RecordsFailed += n
}
