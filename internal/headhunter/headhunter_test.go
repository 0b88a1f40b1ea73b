package headhunter

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/spigell/liquidhire/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(n, pages int, ids ...string) map[string]any {
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]any{
			"id":            id,
			"name":          "Intern " + id,
			"alternate_url": "https://hh.ru/vacancy/" + id,
			"employer":      map[string]any{"id": "1", "name": "Acme"},
			"area":          map[string]any{"id": "1", "name": "Moscow"},
		})
	}
	return map[string]any{"items": items, "found": 10, "pages": pages, "page": n, "per_page": len(ids)}
}

func TestSearchPaging(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, SearchPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		n, _ := strconv.Atoi(r.URL.Query().Get("page"))
		body := page(n, 3, fmt.Sprintf("%d-a", n), fmt.Sprintf("%d-b", n))

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_ = json.NewEncoder(gz).Encode(body)
	}))
	defer srv.Close()

	client := New(nil, "")
	client.APIURL = srv.URL

	postings, err := client.Search(context.Background(), jobs.Query{Term: "Go internship", Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 2, requests, "paging should stop once the limit is reached")
	require.Equal(t, 3, postings.Len())
	assert.Equal(t, "hh-0-a", postings.Items[0].ID)
	assert.Equal(t, "hh-1-a", postings.Items[2].ID)
	assert.Equal(t, "Acme", postings.Items[0].Company)
	assert.Equal(t, "Moscow", postings.Items[0].Location)
}

func TestSearchSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(page(0, 1, "1"))
	}))
	defer srv.Close()

	client := New(nil, "secret")
	client.APIURL = srv.URL

	postings, err := client.Search(context.Background(), jobs.Query{Term: "Go"})
	require.NoError(t, err)
	assert.Equal(t, 1, postings.Len())
}

func TestSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := New(nil, "")
	client.APIURL = srv.URL

	_, err := client.Search(context.Background(), jobs.Query{Term: "Go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearchPacesEveryPage(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		n, _ := strconv.Atoi(r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(page(n, 3, fmt.Sprintf("%d-a", n)))
	}))
	defer srv.Close()

	client := New(nil, "")
	client.APIURL = srv.URL

	var waits int
	pacer := pacerFunc(func(context.Context) error {
		waits++
		return nil
	})

	postings, err := client.Search(context.Background(), jobs.Query{Term: "Go", Pacer: pacer})
	require.NoError(t, err)
	assert.Equal(t, 3, postings.Len())
	assert.Equal(t, 3, requests)
	assert.Equal(t, requests, waits)
}

type pacerFunc func(context.Context) error

func (f pacerFunc) Wait(ctx context.Context) error { return f(ctx) }
