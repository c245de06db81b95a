package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lepinkainen/bookfinder/internal/book"
	apperrors "github.com/lepinkainen/bookfinder/internal/errors"
	"github.com/lepinkainen/bookfinder/internal/ratelimit"
)

// SaveBookMutation adds a book to the authenticated user's saved list.
const SaveBookMutation = `mutation saveBook($bookData: BookInput!) {
  saveBook(bookData: $bookData) {
    _id
    username
    savedBooks {
      bookId
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// GraphQLSaveClient sends saved books to the account service's GraphQL API.
type GraphQLSaveClient struct {
	endpoint string
	client   *http.Client
	limiter  *ratelimit.Limiter
}

// NewGraphQLSaveClient creates a client for endpoint. A nil limiter sends
// requests unpaced.
func NewGraphQLSaveClient(endpoint string, limiter *ratelimit.Limiter) (*GraphQLSaveClient, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid save endpoint: %w", err)
	}
	return &GraphQLSaveClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  limiter,
	}, nil
}

// SaveBook runs the saveBook mutation for record using token as a Bearer
// credential.
func (c *GraphQLSaveClient) SaveBook(ctx context.Context, record book.Record, token string) error {
	if token == "" {
		return apperrors.ErrNotLoggedIn
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	payload := graphQLRequest{
		Query:     SaveBookMutation,
		Variables: map[string]any{"bookData": record},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewFetchError(resp.StatusCode, "save request failed")
	}

	var body graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(body.Errors) > 0 {
		msgs := make([]error, 0, len(body.Errors))
		for _, e := range body.Errors {
			msgs = append(msgs, errors.New(e.Message))
		}
		return fmt.Errorf("API error: %w", errors.Join(msgs...))
	}
	return nil
}
