// internal/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"lesson-template-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// DefaultIndex holds one document per template.
const DefaultIndex = "lesson-templates"

// maxSnapshotSize is the default index.max_result_window.
const maxSnapshotSize = 10000

// ElasticsearchProvider reads the catalog from a search index. Documents
// carry the TemplateRecord JSON shape plus a numeric position for ordering.
type ElasticsearchProvider struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchProvider(client *elasticsearch.Client, index string) *ElasticsearchProvider {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchProvider{client: client, index: index}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string                `json:"_id"`
			Source models.TemplateRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (p *ElasticsearchProvider) Snapshot(ctx context.Context) ([]models.TemplateRecord, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{"position": map[string]interface{}{"order": "asc", "unmapped_type": "integer"}},
			map[string]interface{}{"id": map[string]interface{}{"order": "asc", "unmapped_type": "keyword"}},
		},
	})

	size := maxSnapshotSize
	req := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", p.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", p.index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", p.index, err)
	}

	templates := make([]models.TemplateRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		tpl := hit.Source
		if tpl.ID == "" {
			tpl.ID = hit.ID
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}
