package menus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// URLKitResolverOptions configures the go-urlkit backed resolver.
type URLKitResolverOptions struct {
	Manager      *urlkit.RouteManager
	DefaultGroup string
	// LocaleGroups maps a locale to a dotted group path, e.g. "en" -> "frontend.en".
	LocaleGroups map[string]string
	// LocaleParam, when set, receives the locale as a route parameter.
	LocaleParam string
}

// URLKitResolver resolves menu URLs using a go-urlkit RouteManager.
type URLKitResolver struct {
	manager      *urlkit.RouteManager
	defaultGroup string
	localeGroups map[string]string
	localeParam  string

	mu     sync.RWMutex
	groups map[string]*urlkit.Group
}

// NewURLKitResolver constructs a resolver backed by go-urlkit.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	groups := make(map[string]string, len(opts.LocaleGroups))
	for locale, path := range opts.LocaleGroups {
		groups[strings.ToLower(strings.TrimSpace(locale))] = strings.TrimSpace(path)
	}
	return &URLKitResolver{
		manager:      opts.Manager,
		defaultGroup: strings.TrimSpace(opts.DefaultGroup),
		localeGroups: groups,
		localeParam:  strings.TrimSpace(opts.LocaleParam),
		groups:       make(map[string]*urlkit.Group),
	}
}

// Resolve builds the URL of req.Item.RouteName with its route params.
func (r *URLKitResolver) Resolve(_ context.Context, req ResolveRequest) (string, error) {
	if r == nil || r.manager == nil || req.Item == nil || req.Item.RouteName == "" {
		return "", nil
	}

	path := r.defaultGroup
	if localized := r.localeGroups[strings.ToLower(strings.TrimSpace(req.Locale))]; localized != "" {
		path = localized
	}
	if path == "" {
		return "", nil
	}

	group, err := r.group(path)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, req.Item.RouteName)
	if err != nil {
		return "", err
	}
	for key, value := range req.Item.RouteParams {
		builder.WithParam(key, value)
	}
	if r.localeParam != "" && req.Locale != "" {
		builder.WithParam(r.localeParam, req.Locale)
	}
	return builder.Build()
}

func (r *URLKitResolver) group(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	cached, ok := r.groups[path]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		if current, err = lookupChildGroup(current, part); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groups[path] = current
	r.mu.Unlock()
	return current, nil
}

// go-urlkit panics on unknown groups and routes; the helpers below turn
// those panics into errors.

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("menus: route %q not found: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("menus: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("menus: child group %q not found", name)
		}
	}()
	return parent.Group(name), nil
}
