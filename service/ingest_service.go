package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/vapi-kb/database"
	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PageChunker is the part of Chunker the pipeline depends on.
type PageChunker interface {
	SkipReason(page types.Page) string
	ChunkPage(ctx context.Context, page types.Page) ([]types.Element, error)
}

type IngestOptions struct {
	// Limit caps the number of pages processed; 0 means all.
	Limit     int
	BatchSize int
	// Delay is the minimum spacing between calls to external services.
	Delay time.Duration
	// OnPage is called after every page, e.g. to drive a progress bar.
	OnPage func(done, total int, result types.PageResult)
	// OnBatch is called after every flushed batch.
	OnBatch func(result types.BatchResult)
}

// Pipeline loads crawled pages, chunks them, and uploads the records.
type Pipeline struct {
	chunker PageChunker
	mapper  Mapper
	store   database.RecordCreator
	logger  *zap.Logger
	opts    IngestOptions
	limiter *rate.Limiter
}

func NewPipeline(chunker PageChunker, mapper Mapper, store database.RecordCreator, opts IngestOptions, logger *zap.Logger) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	return &Pipeline{
		chunker: chunker,
		mapper:  mapper,
		store:   store,
		logger:  logger,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Run ingests the crawl dump at path.
func (p *Pipeline) Run(ctx context.Context, path string) (types.IngestReport, error) {
	pages, err := LoadPages(path, p.logger)
	if err != nil {
		return types.IngestReport{RunID: uuid.NewString()}, err
	}
	return p.RunPages(ctx, pages)
}

// RunPages ingests pages sequentially. It returns the partial report and the
// context error if ctx is cancelled mid-run.
func (p *Pipeline) RunPages(ctx context.Context, pages []types.Page) (types.IngestReport, error) {
	report := types.IngestReport{RunID: uuid.NewString(), PagesTotal: len(pages)}
	logger := p.logger.With(zap.String("run_id", report.RunID))

	if p.opts.Limit > 0 && p.opts.Limit < len(pages) {
		pages = pages[:p.opts.Limit]
	}
	logger.Info("starting ingestion", zap.Int("pages", len(pages)), zap.Int("batch_size", p.opts.BatchSize))

	pending := make([]types.Record, 0, p.opts.BatchSize)
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return p.abort(report, pending, i, err, logger)
		}

		result, err := p.processPage(ctx, page, logger)
		if err != nil {
			return p.abort(report, pending, i, err, logger)
		}
		report.AddPage(result.PageResult)
		pending = append(pending, result.records...)
		if p.opts.OnPage != nil {
			p.opts.OnPage(i+1, len(pages), result.PageResult)
		}

		if len(pending) >= p.opts.BatchSize {
			if err := p.flush(ctx, pending, &report, logger); err != nil {
				return p.abort(report, pending, i+1, err, logger)
			}
			pending = pending[:0]
		}
	}

	if len(pending) > 0 {
		if err := p.flush(ctx, pending, &report, logger); err != nil {
			return p.abort(report, pending, len(pages), err, logger)
		}
	}

	logger.Info("ingestion complete",
		zap.Int("pages_processed", report.PagesProcessed),
		zap.Int("pages_attempted", report.PagesAttempted),
		zap.Int("chunks", report.Chunks),
		zap.Int("records_uploaded", report.RecordsUploaded),
		zap.Int("records_failed", report.RecordsFailed))
	return report, nil
}

type pageOutcome struct {
	types.PageResult
	records []types.Record
}

// processPage only returns an error when pacing was interrupted by ctx; a
// failed partition call is reported in the outcome.
func (p *Pipeline) processPage(ctx context.Context, page types.Page, logger *zap.Logger) (pageOutcome, error) {
	outcome := pageOutcome{PageResult: types.PageResult{URL: page.URL}}

	if reason := p.chunker.SkipReason(page); reason != "" {
		logger.Debug("skipping page", zap.String("url", page.URL), zap.String("reason", reason))
		outcome.Status = types.PageSkipped
		return outcome, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return outcome, err
	}
	elements, err := p.chunker.ChunkPage(ctx, page)
	if err != nil {
		logger.Warn("failed to process page", zap.String("url", page.URL), zap.Error(err))
		outcome.Status = types.PageFailed
		outcome.Err = err
		return outcome, nil
	}
	if len(elements) == 0 {
		logger.Info("no content extracted", zap.String("url", page.URL))
		outcome.Status = types.PageSkipped
		return outcome, nil
	}

	outcome.Status = types.PageProcessed
	outcome.Elements = len(elements)
	outcome.records = p.mapper.ToRecords(elements)
	logger.Info("generated chunks", zap.String("url", page.URL), zap.Int("chunks", len(elements)))
	return outcome, nil
}

// abort ends a run early. Records still pending were never sent and are
// counted as failed.
func (p *Pipeline) abort(report types.IngestReport, pending []types.Record, pagesDone int, err error, logger *zap.Logger) (types.IngestReport, error) {
	report.DropRecords(len(pending))
	logger.Warn("ingestion cancelled",
		zap.Int("pages_done", pagesDone),
		zap.Int("records_dropped", len(pending)),
		zap.Error(err))
	return report, err
}

func (p *Pipeline) flush(ctx context.Context, records []types.Record, report *types.IngestReport, logger *zap.Logger) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	logger.Info("importing batch", zap.Int("documents", len(records)))
	result := UploadBatch(ctx, p.store, records, logger)
	report.AddBatch(result)
	if p.opts.OnBatch != nil {
		p.opts.OnBatch(result)
	}
	return nil
}
