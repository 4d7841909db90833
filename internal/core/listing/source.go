package listing

import (
	"context"
	"net/url"
)

// Source is the backend collaborator holding the collection.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload any) error
	Update(ctx context.Context, id string, payload any) error
	Delete(ctx context.Context, id string) error
}

// Client is the subset of the backend client a RESTSource needs.
type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// RESTSource maps Source onto a conventional REST resource:
// GET/POST {path}, PUT/DELETE {path}/{id}.
type RESTSource[T any] struct {
	backend Client
	path    string
}

func NewRESTSource[T any](backend Client, path string) *RESTSource[T] {
	return &RESTSource[T]{backend: backend, path: path}
}

func (r *RESTSource[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.backend.Get(ctx, r.path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RESTSource[T]) Create(ctx context.Context, payload any) error {
	return r.backend.Post(ctx, r.path, payload, nil)
}

func (r *RESTSource[T]) Update(ctx context.Context, id string, payload any) error {
	return r.backend.Put(ctx, r.itemPath(id), payload, nil)
}

func (r *RESTSource[T]) Delete(ctx context.Context, id string) error {
	return r.backend.Delete(ctx, r.itemPath(id))
}

func (r *RESTSource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}
