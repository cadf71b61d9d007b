package menus

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

const (
	menuNamespace     = "menu"
	menuItemNamespace = "menu_item"
)

// BunOption configures the bun-backed repositories.
type BunOption func(*bunOptions)

type bunOptions struct {
	logger interfaces.Logger
}

// WithBunLogger sets the logger used to report read cache evictions that
// fail after a committed write.
func WithBunLogger(logger interfaces.Logger) BunOption {
	return func(o *bunOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyBunOptions(opts []BunOption) bunOptions {
	o := bunOptions{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// BunMenuRepository implements MenuRepository with optional caching.
type BunMenuRepository struct {
	repo         repository.Repository[*Menu]
	cacheService cache.CacheService
	logger       interfaces.Logger
}

// NewBunMenuRepository creates a menu repository without caching.
func NewBunMenuRepository(db *bun.DB, opts ...BunOption) *BunMenuRepository {
	return NewBunMenuRepositoryWithCache(db, nil, nil, opts...)
}

// NewBunMenuRepositoryWithCache creates a menu repository whose reads go
// through go-repository-cache when a cache service is supplied.
func NewBunMenuRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, opts ...BunOption) *BunMenuRepository {
	o := applyBunOptions(opts)
	base := NewMenuRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	} else {
		cacheService = nil
	}
	return &BunMenuRepository{repo: base, cacheService: cacheService, logger: o.logger}
}

func (r *BunMenuRepository) Create(ctx context.Context, menu *Menu) (*Menu, error) {
	record, err := r.repo.Create(ctx, menu)
	if err != nil {
		return nil, mapWriteError(err, "menu")
	}
	r.evict(ctx)
	return record, nil
}

func (r *BunMenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*Menu, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "menu", id.String())
	}
	return record, nil
}

func (r *BunMenuRepository) GetByName(ctx context.Context, name string) (*Menu, error) {
	record, err := r.repo.GetByIdentifier(ctx, name)
	if err != nil {
		return nil, mapRepositoryError(err, "menu", name)
	}
	return record, nil
}

func (r *BunMenuRepository) List(ctx context.Context) ([]*Menu, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.name ASC")
		}),
	)
	return records, err
}

func (r *BunMenuRepository) Update(ctx context.Context, menu *Menu) (*Menu, error) {
	record, err := r.repo.Update(ctx, menu)
	if err != nil {
		return nil, mapWriteError(err, "menu")
	}
	r.evict(ctx)
	return record, nil
}

func (r *BunMenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Menu{ID: id}); err != nil {
		return mapRepositoryError(err, "menu", id.String())
	}
	r.evict(ctx)
	return nil
}

// InvalidateCache drops every cached menu lookup.
func (r *BunMenuRepository) InvalidateCache(ctx context.Context) error {
	return invalidatePrefix(ctx, r.cacheService, menuNamespace)
}

func (r *BunMenuRepository) evict(ctx context.Context) {
	if err := r.InvalidateCache(ctx); err != nil {
		r.logger.Warn("menus.cache.evict_failed", "namespace", menuNamespace, "error", err)
	}
}

// BunMenuItemRepository implements MenuItemRepository with optional caching.
// List queries read through the uncached repository so closures passed as
// select processors never end up in cache keys.
type BunMenuItemRepository struct {
	db           *bun.DB
	repo         repository.Repository[*MenuItem]
	lists        repository.Repository[*MenuItem]
	cacheService cache.CacheService
	logger       interfaces.Logger
}

// NewBunMenuItemRepository creates a menu item repository without caching.
func NewBunMenuItemRepository(db *bun.DB, opts ...BunOption) *BunMenuItemRepository {
	return NewBunMenuItemRepositoryWithCache(db, nil, nil, opts...)
}

// NewBunMenuItemRepositoryWithCache creates a menu item repository with caching services.
func NewBunMenuItemRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, opts ...BunOption) *BunMenuItemRepository {
	o := applyBunOptions(opts)
	base := NewMenuItemRepository(db)
	cached := base
	if cacheService != nil && serializer != nil {
		cached = repositorycache.New(base, cacheService, serializer)
	} else {
		cacheService = nil
	}
	return &BunMenuItemRepository{db: db, repo: cached, lists: base, cacheService: cacheService, logger: o.logger}
}

func (r *BunMenuItemRepository) Create(ctx context.Context, item *MenuItem) (*MenuItem, error) {
	record, err := r.repo.Create(ctx, item)
	if err != nil {
		return nil, mapWriteError(err, "menu_item")
	}
	r.evict(ctx)
	return record, nil
}

func (r *BunMenuItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "menu_item", id.String())
	}
	return record, nil
}

func (r *BunMenuItemRepository) ListByMenu(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.menu_id = ?", menuID)
	})
}

func (r *BunMenuItemRepository) ListRoots(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.menu_id = ?", menuID).
			Where("?TableAlias.parent_id IS NULL")
	})
}

func (r *BunMenuItemRepository) ListNested(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.menu_id = ?", menuID).
			Where("?TableAlias.parent_id IS NOT NULL")
	})
}

func (r *BunMenuItemRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*MenuItem, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.parent_id = ?", parentID)
	})
}

func (r *BunMenuItemRepository) list(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]*MenuItem, error) {
	records, _, err := r.lists.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return filter(q).
				OrderExpr("?TableAlias.sort_order ASC").
				OrderExpr("?TableAlias.created_at ASC").
				OrderExpr("?TableAlias.id ASC")
		}),
	)
	return records, err
}

func (r *BunMenuItemRepository) Update(ctx context.Context, item *MenuItem) (*MenuItem, error) {
	record, err := r.repo.Update(ctx, item)
	if err != nil {
		return nil, mapWriteError(err, "menu_item")
	}
	r.evict(ctx)
	return record, nil
}

func (r *BunMenuItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*MenuItem)(nil)).
			Where("id = ? OR parent_id = ?", id, id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete menu item: %w", err)
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return &NotFoundError{Resource: "menu_item", Key: id.String()}
	}
	r.evict(ctx)
	return nil
}

func (r *BunMenuItemRepository) DeleteByMenu(ctx context.Context, menuID uuid.UUID) (int, error) {
	res, err := r.db.NewDelete().
		Model((*MenuItem)(nil)).
		Where("menu_id = ?", menuID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete menu items: %w", err)
	}
	affected, _ := res.RowsAffected()
	r.evict(ctx)
	return int(affected), nil
}

func (r *BunMenuItemRepository) BulkUpdateOrder(ctx context.Context, items []*MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	if _, err := r.repo.UpdateMany(ctx, items,
		repository.UpdateColumns("sort_order", "updated_at", "updated_by"),
	); err != nil {
		return err
	}
	r.evict(ctx)
	return nil
}

// InvalidateCache drops every cached menu item lookup.
func (r *BunMenuItemRepository) InvalidateCache(ctx context.Context) error {
	return invalidatePrefix(ctx, r.cacheService, menuItemNamespace)
}

// evict runs after a committed write. A failed eviction leaves stale reads
// until the cache TTL and is logged, not returned.
func (r *BunMenuItemRepository) evict(ctx context.Context) {
	if err := r.InvalidateCache(ctx); err != nil {
		r.logger.Warn("menus.cache.evict_failed", "namespace", menuItemNamespace, "error", err)
	}
}

func invalidatePrefix(ctx context.Context, svc cache.CacheService, namespace string) error {
	if svc == nil {
		return nil
	}
	return svc.DeleteByPrefix(ctx, namespace+cache.KeySeparator)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func mapWriteError(err error, resource string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
