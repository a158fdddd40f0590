package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/braude/garage/pkg/types"
)

// Resource addresses one entity collection under /api. It implements
// container.Transport.
type Resource[E any, ID comparable] struct {
	client *Client
	name   string
}

// NewResource returns the resource named name (e.g. "car-services").
func NewResource[E any, ID comparable](c *Client, name string) *Resource[E, ID] {
	return &Resource[E, ID]{client: c, name: name}
}

// Name returns the resource path segment.
func (r *Resource[E, ID]) Name() string { return r.name }

func (r *Resource[E, ID]) collectionPath() string { return "/api/" + r.name }

func (r *Resource[E, ID]) itemPath(id ID) string {
	return r.collectionPath() + "/" + url.PathEscape(fmt.Sprint(id))
}

// List sends GET /api/<resource>. The cache-buster is added only when the
// page carries no pagination parameter at all.
func (r *Resource[E, ID]) List(ctx context.Context, criteria types.Criteria, page types.Page) (types.Listing[E], error) {
	q := page.Values()
	for k, vs := range criteria.Values() {
		q[k] = append(q[k], vs...)
	}
	if page.IsZero() {
		q.Set("cacheBuster", strconv.FormatInt(r.client.now().UnixMilli(), 10))
	}
	return r.listing(ctx, r.collectionPath(), q)
}

// Search sends GET /api/_search/<resource>?query=<q>.
func (r *Resource[E, ID]) Search(ctx context.Context, query string, page types.Page) (types.Listing[E], error) {
	q := page.Values()
	q.Set("query", query)
	return r.listing(ctx, "/api/_search/"+r.name, q)
}

func (r *Resource[E, ID]) listing(ctx context.Context, path string, q url.Values) (types.Listing[E], error) {
	resp, err := r.client.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return types.Listing[E]{}, err
	}
	var items []E
	if err := resp.decode(&items); err != nil {
		return types.Listing[E]{}, err
	}
	return types.Listing[E]{Items: items, TotalItems: totalCount(resp.header)}, nil
}

// Get sends GET /api/<resource>/<id>.
func (r *Resource[E, ID]) Get(ctx context.Context, id ID) (E, error) {
	var e E
	resp, err := r.client.do(ctx, http.MethodGet, r.itemPath(id), nil, nil)
	if err != nil {
		return e, err
	}
	err = resp.decode(&e)
	return e, err
}

// Create sends POST /api/<resource> with the cleaned entity.
func (r *Resource[E, ID]) Create(ctx context.Context, payload types.Payload) (E, error) {
	return r.save(ctx, http.MethodPost, payload)
}

// Update sends PUT /api/<resource> with the cleaned entity.
func (r *Resource[E, ID]) Update(ctx context.Context, payload types.Payload) (E, error) {
	return r.save(ctx, http.MethodPut, payload)
}

func (r *Resource[E, ID]) save(ctx context.Context, method string, payload types.Payload) (E, error) {
	var e E
	resp, err := r.client.do(ctx, method, r.collectionPath(), nil, payload)
	if err != nil {
		return e, err
	}
	err = resp.decode(&e)
	return e, err
}

// Delete sends DELETE /api/<resource>/<id>.
func (r *Resource[E, ID]) Delete(ctx context.Context, id ID) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
	return err
}

// Count sends GET /api/<resource>/count with criteria.
func (r *Resource[E, ID]) Count(ctx context.Context, criteria types.Criteria) (int64, error) {
	resp, err := r.client.do(ctx, http.MethodGet, r.collectionPath()+"/count", criteria.Values(), nil)
	if err != nil {
		return 0, err
	}
	var n int64
	err = resp.decode(&n)
	return n, err
}

// totalCount reads X-Total-Count. A missing or malformed header yields 0.
func totalCount(h http.Header) int64 {
	n, err := strconv.ParseInt(h.Get(HeaderTotalCount), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
