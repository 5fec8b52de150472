package catalog

// resolver.go maps one ImportRow plus current catalog state to resolved
// entities, creating what is missing. It contains the entire resolution
// algorithm shared by both driver modes; nothing here knows whether the
// store underneath is simulated or live.
//
// Update semantics are overwrite-always: a row's description/image/veg value
// replaces the stored one even when blank, so the CSV is a full statement of
// intent for every item it names.

import (
	"context"
	"fmt"
)

// resolver carries the per-import-call state: the store, the probed
// capabilities, and the running sort counters. Item ordering restarts at 0
// within every category the import touches; category sort continues from
// the pre-existing maximum.
type resolver struct {
	store CatalogStore
	caps  CapabilitySet
	scope TenantScope

	catSort    map[string]int // parent key -> last assigned sort_order
	haveMax    map[string]bool
	itemSeq    map[string]int // category ID -> next item sort_order
	variantSeq map[string]int // item ID -> next variant sort_order
}

func newResolver(store CatalogStore, caps CapabilitySet, scope TenantScope) *resolver {
	return &resolver{
		store:      store,
		caps:       caps,
		scope:      scope,
		catSort:    make(map[string]int),
		haveMax:    make(map[string]bool),
		itemSeq:    make(map[string]int),
		variantSeq: make(map[string]int),
	}
}

// rowOutcome is what one row contributed to the summary. On error it holds
// the counts of whatever succeeded before the failure; those writes stand.
type rowOutcome struct {
	categoriesCreated int
	itemsInserted     int
	itemsUpdated      int
	variantsInserted  int
	variantsUpdated   int
	warnings          []Warning
}

// apply resolves one row. A store failure aborts only this row.
func (r *resolver) apply(ctx context.Context, row ImportRow) (rowOutcome, error) {
	var out rowOutcome

	root, err := r.resolveCategory(ctx, &out, nil, row.Category)
	if err != nil {
		return out, err
	}

	target := root
	if row.Subcategory != "" {
		target, err = r.resolveCategory(ctx, &out, &root.ID, row.Subcategory)
		if err != nil {
			return out, err
		}
	}

	item, err := r.resolveItem(ctx, &out, target.ID, row)
	if err != nil {
		return out, err
	}

	if row.VariantName == "" {
		return out, nil
	}
	if !r.caps.VariantTable {
		out.warnings = append(out.warnings, Warning{
			Message: fmt.Sprintf("row %d: variant %q skipped; variant storage is not available", row.RowNo, row.VariantName),
		})
		return out, nil
	}
	if err := r.resolveVariant(ctx, &out, item.ID, row); err != nil {
		return out, err
	}
	return out, nil
}

// resolveCategory finds or creates a category by (parent, lower(name)).
// A created category's sort_order continues from the current maximum under
// that parent, fetched once per parent per import call.
func (r *resolver) resolveCategory(ctx context.Context, out *rowOutcome, parentID *string, name string) (*Category, error) {
	existing, err := r.store.FindCategory(ctx, r.scope, parentID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	key := ""
	if parentID != nil {
		key = *parentID
	}
	if !r.haveMax[key] {
		max, err := r.store.MaxCategorySort(ctx, r.scope, parentID)
		if err != nil {
			return nil, err
		}
		r.catSort[key] = max
		r.haveMax[key] = true
	}
	r.catSort[key]++

	created, err := r.store.CreateCategory(ctx, r.scope, Category{
		Name:      name,
		ParentID:  parentID,
		SortOrder: r.catSort[key],
		IsActive:  true,
	})
	if err != nil {
		return nil, err
	}
	out.categoriesCreated++
	return created, nil
}

// resolveItem finds or creates/updates the item by (category, lower(name)).
// Both branches consume the per-category sort counter so item ordering
// follows file order for every category the import touches.
func (r *resolver) resolveItem(ctx context.Context, out *rowOutcome, categoryID string, row ImportRow) (*MenuItem, error) {
	sort := r.itemSeq[categoryID]
	r.itemSeq[categoryID]++

	existing, err := r.store.FindItem(ctx, r.scope, categoryID, row.Name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		it := MenuItem{
			CategoryID:  categoryID,
			Name:        row.Name,
			PriceNPR:    row.PriceNPR,
			Description: row.Description,
			ImageURL:    row.ImageURL,
			IsAvailable: true,
			SortOrder:   sort,
		}
		if r.caps.ItemVeg {
			veg := row.IsVeg
			it.IsVeg = &veg
		}
		created, err := r.store.CreateItem(ctx, r.scope, it)
		if err != nil {
			return nil, err
		}
		out.itemsInserted++
		return created, nil
	}

	available := true
	patch := ItemPatch{
		PriceNPR:    &row.PriceNPR,
		Description: &row.Description,
		ImageURL:    &row.ImageURL,
		IsAvailable: &available,
		SortOrder:   &sort,
	}
	if r.caps.ItemVeg {
		veg := row.IsVeg
		patch.IsVeg = &veg
	}
	if err := r.store.UpdateItem(ctx, r.scope, existing.ID, patch); err != nil {
		return nil, err
	}
	out.itemsUpdated++
	return existing, nil
}

// resolveVariant finds or creates/updates the variant by (item, lower(name)).
func (r *resolver) resolveVariant(ctx context.Context, out *rowOutcome, itemID string, row ImportRow) error {
	// Validation already guarantees a price when a variant name is set; the
	// item price fallback covers callers constructing rows directly.
	price := row.PriceNPR
	if row.VariantPrice != nil {
		price = *row.VariantPrice
	}

	existing, err := r.store.FindVariant(ctx, r.scope, itemID, row.VariantName)
	if err != nil {
		return err
	}

	if existing == nil {
		sort := r.variantSeq[itemID]
		r.variantSeq[itemID]++

		v := Variant{
			MenuItemID: itemID,
			Name:       row.VariantName,
			PriceNPR:   price,
			IsActive:   true,
			SortOrder:  sort,
		}
		if r.caps.VariantVeg {
			v.IsVeg = row.VariantIsVeg
		}
		if _, err := r.store.CreateVariant(ctx, r.scope, v); err != nil {
			return err
		}
		out.variantsInserted++
		return nil
	}

	active := true
	patch := VariantPatch{
		PriceNPR: &price,
		IsActive: &active,
	}
	if r.caps.VariantVeg {
		patch.SetIsVeg = true
		patch.IsVeg = row.VariantIsVeg
	}
	if err := r.store.UpdateVariant(ctx, r.scope, existing.ID, patch); err != nil {
		return err
	}
	out.variantsUpdated++
	return nil
}
