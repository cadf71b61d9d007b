package menus

import "context"

// ResolveRequest carries the context required for URL resolvers to build links.
type ResolveRequest struct {
	MenuName string
	Item     *MenuItem
	Locale   string
}

// URLResolver turns a route-addressed item into a URL.
type URLResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (string, error)
}
