package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/types"
	"github.com/tieubaoca/vapi-kb/utils"
)

// Partitioner splits a text document into ordered elements.
type Partitioner interface {
	Partition(ctx context.Context, filename, text string) ([]types.Element, error)
}

// UnstructuredClient talks to the Unstructured general partition endpoint.
type UnstructuredClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
	cfg        config.UnstructuredConfig
}

func NewUnstructuredClient(cfg config.UnstructuredConfig) *UnstructuredClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &UnstructuredClient{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
	}
}

// WithStrategy returns a copy of the client using another partition strategy.
func (c *UnstructuredClient) WithStrategy(strategy string) *UnstructuredClient {
	clone := *c
	clone.cfg.Strategy = strategy
	return &clone
}

// Partition uploads text as a plain-text file and returns the elements.
func (c *UnstructuredClient) Partition(ctx context.Context, filename, text string) ([]types.Element, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, filename))
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(text)); err != nil {
		return nil, err
	}

	fields := [][2]string{
		{"strategy", c.cfg.Strategy},
		{"output_format", "application/json"},
		{"chunking_strategy", c.cfg.ChunkingStrategy},
	}
	if c.cfg.MaxCharacters > 0 {
		fields = append(fields, [2]string{"max_characters", strconv.Itoa(c.cfg.MaxCharacters)})
	}
	if c.cfg.NewAfterNChars > 0 {
		fields = append(fields, [2]string{"new_after_n_chars", strconv.Itoa(c.cfg.NewAfterNChars)})
	}
	if c.cfg.Overlap > 0 {
		fields = append(fields, [2]string{"overlap", strconv.Itoa(c.cfg.Overlap)})
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("accept", "application/json")
	req.Header.Set("unstructured-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unstructured request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError("unstructured", resp)
	}

	var elements []types.Element
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("failed to decode unstructured response: %w", err)
	}
	return elements, nil
}

type ChunkerConfig struct {
	MinContentLength int
	SkipExtensions   []string
}

// Chunker turns crawled pages into elements.
type Chunker struct {
	partitioner Partitioner
	minLength   int
	skip        map[string]bool
	now         func() time.Time
}

func NewChunker(partitioner Partitioner, cfg ChunkerConfig) *Chunker {
	skip := make(map[string]bool, len(cfg.SkipExtensions))
	for _, ext := range cfg.SkipExtensions {
		skip[strings.ToLower(ext)] = true
	}
	return &Chunker{
		partitioner: partitioner,
		minLength:   cfg.MinContentLength,
		skip:        skip,
		now:         time.Now,
	}
}

// SkipReason returns why page would not be sent for chunking, or "".
func (c *Chunker) SkipReason(page types.Page) string {
	if ext := urlExtension(page.URL); ext != "" && c.skip[ext] {
		return "non-text extension " + ext
	}
	content := utils.PlainText(page.Content)
	if content == "" {
		return "empty content"
	}
	if n := utf8.RuneCountInString(content); n < c.minLength {
		return fmt.Sprintf("content too short (%d < %d)", n, c.minLength)
	}
	return ""
}

// ChunkPage partitions one page. Skipped pages yield an empty slice and no
// error; a failed service call yields the error and no elements.
func (c *Chunker) ChunkPage(ctx context.Context, page types.Page) ([]types.Element, error) {
	if c.SkipReason(page) != "" {
		return []types.Element{}, nil
	}

	blob := BuildPageText(page)
	filename := fmt.Sprintf("page_%s.txt", utils.Hash(page.URL))
	elements, err := c.partitioner.Partition(ctx, filename, blob)
	if err != nil {
		return []types.Element{}, fmt.Errorf("failed to partition %s: %w", page.URL, err)
	}

	processedAt := c.now()
	out := make([]types.Element, 0, len(elements))
	for _, el := range elements {
		if strings.TrimSpace(el.Text) == "" {
			continue
		}
		el.SourceURL = page.URL
		el.SourceTitle = page.Title
		el.Index = len(out)
		el.ProcessedAt = processedAt
		out = append(out, el)
	}
	return out, nil
}

// BuildPageText renders the document submitted for partitioning.
func BuildPageText(page types.Page) string {
	return fmt.Sprintf("Title: %s\nURL: %s\n\nContent:\n%s", page.Title, page.URL, utils.PlainText(page.Content))
}

func urlExtension(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}
