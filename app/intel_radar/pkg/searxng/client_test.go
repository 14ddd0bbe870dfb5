package searxng

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searx/search", r.URL.Path)
		assert.Equal(t, "Glucora", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "general", r.URL.Query().Get("categories"))
		_, _ = w.Write([]byte(`{"results":[
			{"title":"a","url":"https://a.test","content":"A"},
			{"title":"b","url":"https://b.test","content":"B"},
			{"title":"c","url":"https://c.test","content":"C"}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/searx", 1).Search(context.Background(), &search.Request{Query: "Glucora", MaxResults: 2})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "B", resp.Results[1].Text())
}

func TestClient_SearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Search(context.Background(), &search.Request{Query: "q", Topic: "news"})
	assert.ErrorContains(t, err, "status 429")
}
