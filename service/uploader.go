package service

import (
	"context"

	"github.com/tieubaoca/vapi-kb/database"
	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
)

// UploadBatch writes records one at a time. A failed record is recorded in
// the result and the batch carries on.
func UploadBatch(ctx context.Context, store database.RecordCreator, records []types.Record, logger *zap.Logger) types.BatchResult {
	result := types.BatchResult{Items: make([]types.ItemResult, 0, len(records))}
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			result.Add(types.ItemResult{Index: i, Err: err})
			continue
		}
		id, err := store.CreateRecord(ctx, record)
		if err != nil {
			logger.Warn("import failed",
				zap.Int("index", i),
				zap.String("doc_name", record.DocName),
				zap.Error(err))
		}
		result.Add(types.ItemResult{Index: i, ID: id, Err: err})
	}
	logger.Info("imported batch",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("total", len(records)))
	return result
}
