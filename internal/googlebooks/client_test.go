package googlebooks

import (
	"context"
	"net/http"
	"testing"

	"github.com/lepinkainen/bookfinder/internal/book"
	apperrors "github.com/lepinkainen/bookfinder/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "dune messiah & co", r.URL.Query().Get("q"))
		require.Equal(t, "20", r.URL.Query().Get("maxResults"))
		require.Empty(t, r.URL.Query().Get("key"))

		response := `{
			"totalItems": 2,
			"items": [
				{
					"id": "abc",
					"volumeInfo": {
						"title": "Dune Messiah",
						"authors": ["Frank Herbert"],
						"description": "The sequel.",
						"imageLinks": {"thumbnail": "http://books.google.com/dune.jpg"}
					}
				},
				{
					"id": "def",
					"volumeInfo": {"title": "Untitled Companion"}
				}
			]
		}`
		_, _ = w.Write([]byte(response))
	})

	records, err := client.Search(context.Background(), "dune messiah & co")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, book.Record{
		BookID:      "abc",
		Title:       "Dune Messiah",
		Authors:     []string{"Frank Herbert"},
		Description: "The sequel.",
		Image:       "http://books.google.com/dune.jpg",
	}, records[0])

	assert.Equal(t, "def", records[1].BookID)
	assert.Equal(t, []string{book.NoAuthorPlaceholder}, records[1].Authors)
	assert.Equal(t, book.NoDescriptionPlaceholder, records[1].Description)
	assert.Empty(t, records[1].Image)
}

func TestSearchSendsAPIKeyAndMaxResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(`{"items": []}`))
	}, WithAPIKey("secret"), WithMaxResults(5))

	_, err := client.Search(context.Background(), "q")
	require.NoError(t, err)
}

func TestSearchEmptyResults(t *testing.T) {
	for name, body := range map[string]string{
		"empty items":   `{"totalItems": 0, "items": []}`,
		"missing items": `{"totalItems": 0}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			records, err := client.Search(context.Background(), "zzzz")
			require.NoError(t, err)
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestSearchUpstreamRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	records, err := client.Search(context.Background(), "dune")
	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, apperrors.IsUpstreamRateLimitError(err))
	assert.Equal(t, UpstreamRateLimitMessage, err.Error())
}

func TestSearchHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "dune")
	require.Error(t, err)
	assert.True(t, apperrors.IsFetchError(err))
	assert.False(t, apperrors.IsUpstreamRateLimitError(err))
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestSearchMalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{invalid json`))
	})

	_, err := client.Search(context.Background(), "dune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
	assert.False(t, apperrors.IsFetchError(err))
}

func TestSearchURLEncodesQuery(t *testing.T) {
	client := NewClient(WithBaseURL("http://example.test/books/v1"))

	assert.Equal(t,
		"http://example.test/books/v1/volumes?maxResults=20&q=war+%26+peace%3F",
		client.SearchURL("war & peace?"))
}

func TestSearchRequestError(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"))

	_, err := client.Search(context.Background(), "dune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}
