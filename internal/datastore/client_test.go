package datastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lepinkainen/bookfinder/internal/book"
	apperrors "github.com/lepinkainen/bookfinder/internal/errors"
	"github.com/lepinkainen/bookfinder/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBook = book.New("abc", "Dune", []string{"Frank Herbert"}, "Spice.", "http://img")

func TestGraphQLSaveClient_Success(t *testing.T) {
	var got graphQLRequest
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"saveBook":{"_id":"u1","username":"reader","savedBooks":[{"bookId":"abc"}]}}}`))
	}))
	defer ts.Close()

	client, err := NewGraphQLSaveClient(ts.URL, ratelimit.New("save", 10))
	require.NoError(t, err)

	require.NoError(t, client.SaveBook(context.Background(), testBook, "testtoken"))

	assert.Equal(t, "Bearer testtoken", auth)
	assert.Equal(t, SaveBookMutation, got.Query)
	bookData, ok := got.Variables["bookData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc", bookData["bookId"])
	assert.Equal(t, "Dune", bookData["title"])
	assert.Equal(t, []any{"Frank Herbert"}, bookData["authors"])
}

func TestGraphQLSaveClient_GraphQLError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"You need to be logged in!"}]}`))
	}))
	defer ts.Close()

	client, err := NewGraphQLSaveClient(ts.URL, nil)
	require.NoError(t, err)

	err = client.SaveBook(context.Background(), testBook, "testtoken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "You need to be logged in!")
}

func TestGraphQLSaveClient_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	client, err := NewGraphQLSaveClient(ts.URL, nil)
	require.NoError(t, err)

	err = client.SaveBook(context.Background(), testBook, "testtoken")
	require.Error(t, err)
	assert.True(t, apperrors.IsFetchError(err))
}

func TestGraphQLSaveClient_NoTokenNeverSends(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	client, err := NewGraphQLSaveClient(ts.URL, nil)
	require.NoError(t, err)

	err = client.SaveBook(context.Background(), testBook, "")
	assert.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
	assert.False(t, called)
}

func TestNewGraphQLSaveClient_InvalidEndpoint(t *testing.T) {
	_, err := NewGraphQLSaveClient("not a url", nil)
	require.Error(t, err)
}
