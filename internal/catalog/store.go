package catalog

// store.go defines the persistence seam of the reconciliation driver.
//
// Both driver modes run the literal same resolution algorithm; only the
// CatalogStore behind it differs. SimulatedStore keeps everything in memory
// with synthetic IDs, LiveStore writes through pgx. Keeping business logic
// out of both implementations is what guarantees dry-run/commit parity.

import "context"

// ItemPatch carries the fields an item update writes. Nil fields are left
// untouched; the resolver sets IsVeg only when the store supports it.
type ItemPatch struct {
	PriceNPR    *int
	Description *string
	ImageURL    *string
	IsAvailable *bool
	IsVeg       *bool
	SortOrder   *int
}

// VariantPatch carries the fields a variant update writes. IsVeg is
// tri-state, so SetIsVeg says whether to write it at all; IsVeg == nil with
// SetIsVeg true writes NULL ("inherit from item").
type VariantPatch struct {
	PriceNPR *int
	IsActive *bool
	SetIsVeg bool
	IsVeg    *bool
}

// CatalogStore is the single persistence interface the resolver runs
// against. Every call is scoped to one tenant. Finds return (nil, nil) when
// no entity matches; names match case-insensitively.
type CatalogStore interface {
	FindCategory(ctx context.Context, scope TenantScope, parentID *string, name string) (*Category, error)
	CreateCategory(ctx context.Context, scope TenantScope, c Category) (*Category, error)
	// MaxCategorySort returns the highest sort_order among the categories
	// under parentID (0 when there are none).
	MaxCategorySort(ctx context.Context, scope TenantScope, parentID *string) (int, error)

	FindItem(ctx context.Context, scope TenantScope, categoryID, name string) (*MenuItem, error)
	CreateItem(ctx context.Context, scope TenantScope, it MenuItem) (*MenuItem, error)
	UpdateItem(ctx context.Context, scope TenantScope, id string, patch ItemPatch) error

	FindVariant(ctx context.Context, scope TenantScope, itemID, name string) (*Variant, error)
	CreateVariant(ctx context.Context, scope TenantScope, v Variant) (*Variant, error)
	UpdateVariant(ctx context.Context, scope TenantScope, id string, patch VariantPatch) error
}

// Snapshot is a full read of one tenant's catalog, used to seed the
// simulated store for a dry run (and by the read-back API).
type Snapshot struct {
	Categories []Category
	Items      []MenuItem
	Variants   []Variant
}

// StoreProvider is what the import service needs from a backing store:
// capability detection, a snapshot for dry runs, and a writable store for
// commits. The pgx implementation lives in pgstore.go; tests provide an
// in-memory one.
type StoreProvider interface {
	CapabilityProber
	LoadSnapshot(ctx context.Context, scope TenantScope, caps CapabilitySet) (*Snapshot, error)
	Open(caps CapabilitySet) CatalogStore
}
