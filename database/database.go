package database

import (
	"context"

	"github.com/tieubaoca/vapi-kb/types"
)

// RecordCreator writes a single record and returns the store's object id.
type RecordCreator interface {
	CreateRecord(ctx context.Context, record types.Record) (string, error)
}

// Searcher runs knowledge-base queries.
type Searcher interface {
	SearchLike(ctx context.Context, query string, limit int) ([]types.SearchHit, error)
	SearchNearText(ctx context.Context, query string, limit int) ([]types.SearchHit, error)
	SearchAll(ctx context.Context, limit int) ([]types.SearchHit, error)
}

// ClassInfo is a schema class summary.
type ClassInfo struct {
	Name       string
	Vectorizer string
	Properties []string
}

// MetaInfo describes the connected Weaviate instance.
type MetaInfo struct {
	Version  string
	Hostname string
	Modules  []string
}
