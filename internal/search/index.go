package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/furniture_shop/internal/models"
)

type Query struct {
	Text     string
	Category models.Category
}

// Index is the product search backend. Search returns matching product
// ids in relevance order.
type Index interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q Query, from, size int) (int64, []uuid.UUID, error)
}

type ESIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewESIndex(es *elasticsearch.Client, index string) *ESIndex {
	return &ESIndex{es: es, index: index}
}

type document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Material    string `json:"material"`
	Price       string `json:"price"`
	Active      bool   `json:"active"`
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "material":    {"type": "text"},
      "price":       {"type": "keyword"},
      "active":      {"type": "boolean"}
    }
  }
}`

func (x *ESIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(ctx),
		x.es.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	return checkResponse("create index", res)
}

func (x *ESIndex) IndexProduct(ctx context.Context, p *models.Product) error {
	doc := document{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		Material:    p.Material,
		Price:       p.Price.StringFixed(2),
		Active:      p.Active,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: marshal product: %w", err)
	}
	res, err := x.es.Index(x.index, bytes.NewReader(body),
		x.es.Index.WithContext(ctx),
		x.es.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("search: index product: %w", err)
	}
	return checkResponse("index product", res)
}

func (x *ESIndex) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := x.es.Delete(x.index, id.String(), x.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete product: %w", err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse("delete product", res)
}

func (x *ESIndex) Search(ctx context.Context, q Query, from, size int) (int64, []uuid.UUID, error) {
	filter := []map[string]any{
		{"term": map[string]any{"active": true}},
	}
	if q.Category != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"category": string(q.Category)}})
	}
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q.Text,
						"fields":    []string{"name^2", "description", "material"},
						"fuzziness": "AUTO",
					},
				},
				"filter": filter,
			},
		},
		"from":    from,
		"size":    size,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: query: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

func checkResponse(op string, res *esapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("search: %s: %s: %s", op, res.Status(), msg)
	}
	return nil
}
