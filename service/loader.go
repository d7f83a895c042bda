package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
)

// LoadPages reads a crawl dump and returns its pages. On failure it logs,
// returns an empty slice and the error.
func LoadPages(path string, logger *zap.Logger) ([]types.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read crawl file", zap.String("path", path), zap.Error(err))
		return []types.Page{}, fmt.Errorf("failed to read crawl file: %w", err)
	}

	var dump types.CrawlDump
	if err := json.Unmarshal(data, &dump); err != nil {
		logger.Error("failed to parse crawl file", zap.String("path", path), zap.Error(err))
		return []types.Page{}, fmt.Errorf("failed to parse crawl file: %w", err)
	}
	if dump.Pages == nil {
		dump.Pages = []types.Page{}
	}

	logger.Info("loaded crawl data", zap.String("path", path), zap.Int("pages", len(dump.Pages)))
	return dump.Pages, nil
}
