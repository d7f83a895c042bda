package service

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/tieubaoca/vapi-kb/types"
	"go.uber.org/zap"
)

type fakePartitioner struct {
	mu       sync.Mutex
	calls    int
	texts    []string
	elements []types.Element
	err      error
}

func (f *fakePartitioner) Partition(_ context.Context, _ string, text string) ([]types.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.Element, len(f.elements))
	copy(out, f.elements)
	return out, nil
}

// fakeCreator fails every record whose DocName is listed in failing.
type fakeCreator struct {
	mu      sync.Mutex
	failing map[string]bool
	created []types.Record
}

func (f *fakeCreator) CreateRecord(_ context.Context, record types.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[record.DocName] {
		return "", errors.New("422 unprocessable entity")
	}
	f.created = append(f.created, record)
	return "id-" + record.DocName, nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}
