package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
)

func TestClient_Search(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"query":"q","results":[{"title":"Glucora review","url":"https://r.test","content":"short","raw_content":"long text","score":0.9}]}`))
	}))
	defer srv.Close()

	c := NewClient("tvly-key", WithEndpoint(srv.URL))
	resp, err := c.Search(context.Background(), &search.Request{Query: "Glucora reviews"})
	require.NoError(t, err)

	assert.Equal(t, "Glucora reviews", got.Query)
	assert.Equal(t, "general", got.Topic)
	assert.Equal(t, 5, got.MaxResults)
	assert.Equal(t, "basic", got.SearchDepth)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "long text", resp.Results[0].Text())
	assert.InDelta(t, 0.9, resp.Results[0].Score, 1e-9)
}

func TestClient_SearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	_, err := NewClient("x", WithEndpoint(srv.URL)).Search(context.Background(), &search.Request{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "bad key")
}
