package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// ErrUnexpectedList is returned when a list endpoint answers with neither an array nor a page envelope.
var ErrUnexpectedList = errors.New("unexpected list payload")

// MaxListPages bounds how many envelope pages one List call follows.
const MaxListPages = 50

// None is the input type of read-only collections.
type None struct{}

// Collection is a REST resource with the standard verbs.
// T is the read model, D the create/update payload.
type Collection[T any, D any] struct {
	client *Client
	path   string
}

// NewCollection binds a resource path such as "/disciplinas/".
// PRE: path starts and ends with "/"
func NewCollection[T any, D any](c *Client, path string) *Collection[T, D] {
	return &Collection[T, D]{client: c, path: path}
}

// Path returns the collection path.
func (col *Collection[T, D]) Path() string {
	return col.path
}

func (col *Collection[T, D]) itemPath(key string) string {
	return col.path + url.PathEscape(key) + "/"
}

// List fetches the collection, optionally filtered by query parameters.
// Both a bare array and a paginated {"results": [...], "next": url} envelope are
// accepted; envelope pages are followed through next up to MaxListPages.
func (col *Collection[T, D]) List(ctx context.Context, q url.Values) ([]T, error) {
	all := []T{}
	seen := map[string]bool{q.Encode(): true}
	for page := 1; ; page++ {
		var raw json.RawMessage
		if err := col.client.Do(ctx, http.MethodGet, col.path, q, nil, &raw); err != nil {
			return nil, err
		}
		items, next, err := decodeList[T](raw)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if next == "" {
			return all, nil
		}

		u, err := url.Parse(next)
		if err != nil {
			return nil, fmt.Errorf("list %s: next link %q: %w", col.path, next, err)
		}
		q = u.Query()
		if page >= MaxListPages || seen[q.Encode()] {
			slog.Warn("backend_list_truncated", "path", col.path, "pages", page, "items", len(all), "next", next)
			return all, nil
		}
		seen[q.Encode()] = true
	}
}

// Get fetches one item by its URL key.
func (col *Collection[T, D]) Get(ctx context.Context, key string) (T, error) {
	var out T
	err := col.client.Do(ctx, http.MethodGet, col.itemPath(key), nil, nil, &out)
	return out, err
}

// Create posts a new item.
func (col *Collection[T, D]) Create(ctx context.Context, in D) (T, error) {
	var out T
	err := col.client.Do(ctx, http.MethodPost, col.path, nil, in, &out)
	return out, err
}

// Update replaces an item (PUT).
func (col *Collection[T, D]) Update(ctx context.Context, key string, in D) (T, error) {
	var out T
	err := col.client.Do(ctx, http.MethodPut, col.itemPath(key), nil, in, &out)
	return out, err
}

// Patch partially updates an item.
func (col *Collection[T, D]) Patch(ctx context.Context, key string, fields any) (T, error) {
	var out T
	err := col.client.Do(ctx, http.MethodPatch, col.itemPath(key), nil, fields, &out)
	return out, err
}

// Delete removes an item.
func (col *Collection[T, D]) Delete(ctx context.Context, key string) error {
	return col.client.Do(ctx, http.MethodDelete, col.itemPath(key), nil, nil, nil)
}

// decodeList reads one list payload. next is the envelope's next link, if any.
func decodeList[T any](raw json.RawMessage) (items []T, next string, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, "", nil
	}
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	case '{':
		var page struct {
			Results json.RawMessage `json:"results"`
			Next    *string         `json:"next"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, "", err
		}
		if page.Results == nil {
			return nil, "", ErrUnexpectedList
		}
		items, _, err := decodeList[T](page.Results)
		if err != nil {
			return nil, "", err
		}
		if page.Next != nil {
			next = *page.Next
		}
		return items, next, nil
	}
	return nil, "", ErrUnexpectedList
}
