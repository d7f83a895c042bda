package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const DEFAULT_CLASS = "VERBA_DOCUMENTS"

var (
	recordFields = []graphql.Field{
		{Name: "title"},
		{Name: "text"},
		{Name: "doc_name"},
		{Name: "doc_type"},
		{Name: "doc_link"},
		{Name: "source"},
	}
	idField       = graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}}
	distanceField = graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}}
)

// RecordClass returns the schema for ingested records.
func RecordClass(name string) *models.Class {
	return &models.Class{
		Class: name,
		Properties: []*models.Property{
			{Name: "title", DataType: []string{"text"}},
			{Name: "text", DataType: []string{"text"}},
			{Name: "doc_name", DataType: []string{"text"}},
			{Name: "doc_type", DataType: []string{"text"}},
			{Name: "doc_link", DataType: []string{"text"}},
			{Name: "chunk_id", DataType: []string{"text"}},
			{Name: "chunk_index", DataType: []string{"int"}},
			{Name: "type", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
		},
		VectorIndexType: "hnsw",
	}
}

type WeaviateStore struct {
	client       *weaviate.Client
	className    string
	url          string
	vectorizer   string
	moduleConfig map[string]interface{}
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.HasPrefix(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	if host == "" {
		return nil, fmt.Errorf("weaviate host is empty")
	}

	headers := make(map[string]string, len(cfg.Headers)+2)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	// The client refuses a ConnectionClient together with AuthConfig, so the
	// request timeout goes through Config.Timeout.
	wcfg := weaviate.Config{
		Host:    host,
		Scheme:  scheme,
		Timeout: cfg.Timeout,
		Headers: headers,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		headers["X-Weaviate-Api-Key"] = cfg.APIKey
		headers["X-Weaviate-Cluster-Url"] = fmt.Sprintf("%s://%s", scheme, host)
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	className := cfg.Class
	if className == "" {
		className = DEFAULT_CLASS
	}
	return &WeaviateStore{
		client:       client,
		className:    className,
		url:          fmt.Sprintf("%s://%s", scheme, host),
		vectorizer:   cfg.Vectorizer,
		moduleConfig: cfg.ModuleConfig,
	}, nil
}

func (s *WeaviateStore) ClassName() string { return s.className }

func (s *WeaviateStore) URL() string { return s.url }

// EnsureClass creates the record class if it does not exist yet.
func (s *WeaviateStore) EnsureClass(ctx context.Context) (created bool, err error) {
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(s.className).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check class %s: %w", s.className, err)
	}
	if exists {
		return false, nil
	}

	class := RecordClass(s.className)
	class.Vectorizer = s.vectorizer
	if len(s.moduleConfig) > 0 {
		class.ModuleConfig = s.moduleConfig
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return false, fmt.Errorf("failed to create %s class: %w", s.className, err)
	}
	return true, nil
}

// CreateRecord stores one record through the REST objects endpoint.
func (s *WeaviateStore) CreateRecord(ctx context.Context, record types.Record) (string, error) {
	result, err := s.client.Data().Creator().
		WithClassName(s.className).
		WithProperties(record.Properties()).
		Do(ctx)
	if err != nil {
		return "", err
	}
	if result == nil || result.Object == nil {
		return "", nil
	}
	return string(result.Object.ID), nil
}

func (s *WeaviateStore) Meta(ctx context.Context) (*MetaInfo, error) {
	meta, err := s.client.Misc().MetaGetter().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get meta: %w", err)
	}
	info := &MetaInfo{
		Version:  meta.Version,
		Hostname: meta.Hostname,
	}
	if modules, ok := meta.Modules.(map[string]interface{}); ok {
		for name := range modules {
			info.Modules = append(info.Modules, name)
		}
		sort.Strings(info.Modules)
	}
	return info, nil
}

// ListClasses returns every class in the schema.
func (s *WeaviateStore) ListClasses(ctx context.Context) ([]ClassInfo, error) {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	classes := make([]ClassInfo, 0, len(schema.Classes))
	for _, class := range schema.Classes {
		info := ClassInfo{Name: class.Class, Vectorizer: class.Vectorizer}
		for _, prop := range class.Properties {
			info.Properties = append(info.Properties, prop.Name)
		}
		classes = append(classes, info)
	}
	return classes, nil
}

// SampleObjects returns the ids of up to limit objects of class.
func (s *WeaviateStore) SampleObjects(ctx context.Context, class string, limit int) ([]string, error) {
	result, err := s.client.GraphQL().Get().
		WithClassName(class).
		WithFields(idField).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if err := graphQLError(result); err != nil {
		return nil, err
	}

	var ids []string
	for _, item := range getItems(result, class) {
		if additional, ok := item["_additional"].(map[string]interface{}); ok {
			ids = append(ids, stringValue(additional["id"]))
		}
	}
	return ids, nil
}

// Count returns the number of objects in class.
func (s *WeaviateStore) Count(ctx context.Context, class string) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if err := graphQLError(result); err != nil {
		return 0, err
	}
	aggregate, _ := result.Data["Aggregate"].(map[string]interface{})
	rows, _ := aggregate[class].([]interface{})
	if len(rows) == 0 {
		return 0, nil
	}
	row, _ := rows[0].(map[string]interface{})
	meta, _ := row["meta"].(map[string]interface{})
	count, _ := meta["count"].(float64)
	return int(count), nil
}

// SearchLike matches records whose text contains query.
func (s *WeaviateStore) SearchLike(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	where := filters.Where().
		WithPath([]string{"text"}).
		WithOperator(filters.Like).
		WithValueText("*" + query + "*")

	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(append(recordFields, idField)...).
		WithWhere(where)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if err := graphQLError(result); err != nil {
		return nil, err
	}
	return s.parseHits(result), nil
}

// SearchNearText runs a vector search; the class must have a vectorizer.
func (s *WeaviateStore) SearchNearText(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(append(recordFields, distanceField)...).
		WithNearText(nearText)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if err := graphQLError(result); err != nil {
		return nil, err
	}
	return s.parseHits(result), nil
}

// SearchAll returns the first limit records without any filter.
func (s *WeaviateStore) SearchAll(ctx context.Context, limit int) ([]types.SearchHit, error) {
	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(append(recordFields, idField)...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if err := graphQLError(result); err != nil {
		return nil, err
	}
	return s.parseHits(result), nil
}

func (s *WeaviateStore) parseHits(result *models.GraphQLResponse) []types.SearchHit {
	items := getItems(result, s.className)
	hits := make([]types.SearchHit, 0, len(items))
	for _, doc := range items {
		hit := types.SearchHit{
			Title:   stringValue(doc["title"]),
			Text:    stringValue(doc["text"]),
			DocName: stringValue(doc["doc_name"]),
			DocType: stringValue(doc["doc_type"]),
			DocLink: stringValue(doc["doc_link"]),
			Source:  stringValue(doc["source"]),
		}
		if additional, ok := doc["_additional"].(map[string]interface{}); ok {
			hit.ID = stringValue(additional["id"])
			if distance, ok := additional["distance"].(float64); ok {
				score := 1 - distance
				hit.Score = &score
			}
		}
		hits = append(hits, hit)
	}
	return hits
}

// Helper functions
func getItems(result *models.GraphQLResponse, class string) []map[string]interface{} {
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	data, ok := get[class].([]interface{})
	if !ok {
		return nil
	}
	items := make([]map[string]interface{}, 0, len(data))
	for _, item := range data {
		if doc, ok := item.(map[string]interface{}); ok {
			items = append(items, doc)
		}
	}
	return items
}

func graphQLError(result *models.GraphQLResponse) error {
	if result == nil || len(result.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		if e != nil {
			messages = append(messages, e.Message)
		}
	}
	return &GraphQLError{Messages: messages}
}

// GraphQLError is returned when Weaviate answers 200 with an errors array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
