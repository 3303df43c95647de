package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Page is one slice of a list endpoint.
type Page[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

// Resource is a typed view of one REST collection, e.g. "employees".
type Resource[T any] struct {
	client *Client
	name   string
}

func NewResource[T any](client *Client, name string) *Resource[T] {
	return &Resource[T]{client: client, name: strings.Trim(name, "/")}
}

func (r *Resource[T]) Name() string {
	return r.name
}

func (r *Resource[T]) Client() *Client {
	return r.client
}

func (r *Resource[T]) collectionPath() string {
	return r.name + "/"
}

func (r *Resource[T]) itemPath(id string) string {
	return r.name + "/" + url.PathEscape(id) + "/"
}

func (r *Resource[T]) List(ctx context.Context, query url.Values) (Page[T], error) {
	var page Page[T]
	if _, err := r.client.DoJSON(ctx, http.MethodGet, r.collectionPath(), query, nil, &page); err != nil {
		return Page[T]{}, err
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return page, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	_, err := r.client.DoJSON(ctx, http.MethodGet, r.itemPath(id), nil, nil, &out)
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, in any) (T, int, error) {
	var out T
	status, err := r.client.DoJSON(ctx, http.MethodPost, r.collectionPath(), nil, in, &out)
	return out, status, err
}

// Update sends a partial update.
func (r *Resource[T]) Update(ctx context.Context, id string, patch any) (T, int, error) {
	var out T
	status, err := r.client.DoJSON(ctx, http.MethodPatch, r.itemPath(id), nil, patch, &out)
	return out, status, err
}

func (r *Resource[T]) Delete(ctx context.Context, id string) (int, error) {
	return r.client.DoJSON(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}
