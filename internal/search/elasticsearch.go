package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// DefaultIndexName is the index holding product documents.
const DefaultIndexName = "storefront_products"

const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "name":           { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "description":    { "type": "text" },
      "price":          { "type": "keyword", "index": false },
      "price_value":    { "type": "scaled_float", "scaling_factor": 100 },
      "category_id":    { "type": "keyword" },
      "category_name":  { "type": "text" },
      "is_active":      { "type": "boolean" },
      "is_featured":    { "type": "boolean" },
      "thumbnail_url":  { "type": "keyword", "index": false },
      "thumbnail_key":  { "type": "keyword", "index": false },
      "average_rating": { "type": "float" },
      "rating_count":   { "type": "integer" },
      "created_at":     { "type": "date" },
      "updated_at":     { "type": "date" }
    }
  }
}`

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// ElasticsearchIndex keeps product documents in Elasticsearch.
type ElasticsearchIndex struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// NewElasticsearchIndex creates the client. Call EnsureIndex before use.
func NewElasticsearchIndex(addresses []string, indexName string, logger *slog.Logger) (*ElasticsearchIndex, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}
	return &ElasticsearchIndex{client: client, indexName: indexName, logger: logger}, nil
}

// Ping checks that the cluster is reachable.
func (e *ElasticsearchIndex) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the products index with its mapping when it is missing.
func (e *ElasticsearchIndex) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: check index: %w", err)
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError("create index", res)
	}

	e.logger.InfoContext(ctx, "elasticsearch index created", slog.String("index", e.indexName))
	return nil
}

func (e *ElasticsearchIndex) Index(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(NewDocument(p))
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal product: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(p.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError("index", res)
	}

	e.logger.DebugContext(ctx, "indexed product", slog.String("product_id", p.ID))
	return nil
}

// Remove deletes a document. A missing document is not an error.
func (e *ElasticsearchIndex) Remove(ctx context.Context, id string) error {
	res, err := e.client.Delete(e.indexName, id, e.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res)
	}
	return nil
}

func (e *ElasticsearchIndex) Search(ctx context.Context, query string, params pagination.Params) ([]domain.Product, int, error) {
	data, err := json.Marshal(buildQuery(query, params))
	if err != nil {
		return nil, 0, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithTrackTotalHits(true),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, 0, responseError("search", res)
	}

	var out esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	products := make([]domain.Product, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		products = append(products, hit.Source.Product())
	}
	return products, out.Hits.Total.Value, nil
}

func buildQuery(query string, params pagination.Params) map[string]any {
	size := params.Size
	if size <= 0 {
		size = pagination.DefaultSize
	}

	var must any = map[string]any{"match_all": map[string]any{}}
	if q := strings.TrimSpace(query); q != "" {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^3", "description", "category_name"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		}
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   []any{must},
				"filter": []any{map[string]any{"term": map[string]any{"is_active": true}}},
			},
		},
		"sort": []any{
			map[string]any{"_score": "desc"},
			map[string]any{"id": "asc"},
		},
		"from": params.Offset,
		"size": size,
	}
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var errResp esErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Type != "" {
		return fmt.Errorf("elasticsearch %s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("elasticsearch %s: unexpected status %s", op, res.Status())
}
