// internal/common/database/elasticsearch_test.go
package database

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"lesson-template-workers/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type esRequest struct {
	method string
	path   string
	body   string
}

func newTestElasticsearch(t *testing.T, existsStatus int) (*ElasticsearchClient, func() []esRequest) {
	var (
		mu   sync.Mutex
		reqs []esRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, esRequest{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(existsStatus)
		case http.MethodPut:
			io.WriteString(w, `{"acknowledged":true,"index":"lesson-templates"}`)
		default:
			io.WriteString(w, `{}`)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)

	return client, func() []esRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]esRequest(nil), reqs...)
	}
}

func TestEnsureIndex_CreatesMissingIndex(t *testing.T) {
	client, requests := newTestElasticsearch(t, http.StatusNotFound)

	require.NoError(t, client.EnsureIndex(context.Background(), "lesson-templates", TemplateIndexMapping))

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodHead, reqs[0].method)
	assert.Equal(t, http.MethodPut, reqs[1].method)
	assert.Equal(t, "/lesson-templates", reqs[1].path)
	assert.JSONEq(t, TemplateIndexMapping, reqs[1].body)
}

func TestEnsureIndex_ExistingIndexUntouched(t *testing.T) {
	client, requests := newTestElasticsearch(t, http.StatusOK)

	require.NoError(t, client.EnsureIndex(context.Background(), "lesson-templates", TemplateIndexMapping))
	assert.Len(t, requests(), 1)
}

func TestEnsureIndex_UnexpectedStatus(t *testing.T) {
	client, _ := newTestElasticsearch(t, http.StatusForbidden)

	err := client.EnsureIndex(context.Background(), "lesson-templates", TemplateIndexMapping)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
