package catalog

// pgstore.go is the committed half of the dual-mode driver: a CatalogStore
// over Postgres via pgx. A LiveStore is opened per import call with the
// capabilities probed for that call, so its SQL never references a column
// the deployment does not have.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// PgProvider wires the probe, snapshot and live-store operations to one
// pgx connection pool.
type PgProvider struct {
	db     DBTX
	prober CapabilityProber
}

// NewPgProvider returns a StoreProvider backed by Postgres.
func NewPgProvider(db DBTX) *PgProvider {
	return &PgProvider{db: db, prober: NewPgProber(db)}
}

func (p *PgProvider) Probe(ctx context.Context, scope TenantScope) (CapabilitySet, error) {
	return p.prober.Probe(ctx, scope)
}

func (p *PgProvider) Open(caps CapabilitySet) CatalogStore {
	return &LiveStore{db: p.db, caps: caps}
}

// LiveStore implements CatalogStore with real writes.
type LiveStore struct {
	db   DBTX
	caps CapabilitySet
}

func (s *LiveStore) FindCategory(ctx context.Context, scope TenantScope, parentID *string, name string) (*Category, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, description, parent_id, sort_order, is_active
		FROM menu_categories
		WHERE business_id = $1
		  AND parent_id IS NOT DISTINCT FROM $2
		  AND lower(name) = lower($3)
		LIMIT 1`,
		scope.BusinessID, toPgUUIDPtr(parentID), name)

	var (
		id, parent pgtype.UUID
		desc       pgtype.Text
		c          Category
	)
	err := row.Scan(&id, &c.Name, &desc, &parent, &c.SortOrder, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	c.ID = pgUUIDString(id)
	c.BusinessID = scope.BusinessID
	c.Description = desc.String
	if parent.Valid {
		pid := pgUUIDString(parent)
		c.ParentID = &pid
	}
	return &c, nil
}

func (s *LiveStore) CreateCategory(ctx context.Context, scope TenantScope, c Category) (*Category, error) {
	c.ID = uuid.NewString()
	c.BusinessID = scope.BusinessID
	_, err := s.db.Exec(ctx, `
		INSERT INTO menu_categories (id, business_id, name, description, parent_id, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.BusinessID, c.Name, nullText(c.Description), toPgUUIDPtr(c.ParentID), c.SortOrder, c.IsActive)
	if err != nil {
		return nil, fmt.Errorf("create category %q: %w", c.Name, err)
	}
	return &c, nil
}

func (s *LiveStore) MaxCategorySort(ctx context.Context, scope TenantScope, parentID *string) (int, error) {
	var max int
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(sort_order), 0)
		FROM menu_categories
		WHERE business_id = $1 AND parent_id IS NOT DISTINCT FROM $2`,
		scope.BusinessID, toPgUUIDPtr(parentID)).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max category sort: %w", err)
	}
	return max, nil
}

func (s *LiveStore) FindItem(ctx context.Context, scope TenantScope, categoryID, name string) (*MenuItem, error) {
	cols := "id, name, price_npr, description, image_url, is_available, sort_order"
	if s.caps.ItemVeg {
		cols += ", is_veg"
	}
	row := s.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM menu_items
		WHERE business_id = $1 AND category_id = $2 AND lower(name) = lower($3)
		LIMIT 1`, cols),
		scope.BusinessID, categoryID, name)

	var (
		id          pgtype.UUID
		desc, image pgtype.Text
		it          MenuItem
	)
	dest := []interface{}{&id, &it.Name, &it.PriceNPR, &desc, &image, &it.IsAvailable, &it.SortOrder}
	var veg pgtype.Bool
	if s.caps.ItemVeg {
		dest = append(dest, &veg)
	}
	err := row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	it.ID = pgUUIDString(id)
	it.BusinessID = scope.BusinessID
	it.CategoryID = categoryID
	it.Description = desc.String
	it.ImageURL = image.String
	if s.caps.ItemVeg && veg.Valid {
		it.IsVeg = &veg.Bool
	}
	return &it, nil
}

func (s *LiveStore) CreateItem(ctx context.Context, scope TenantScope, it MenuItem) (*MenuItem, error) {
	it.ID = uuid.NewString()
	it.BusinessID = scope.BusinessID

	cols := []string{"id", "business_id", "category_id", "name", "price_npr", "description", "image_url", "is_available", "sort_order"}
	args := []interface{}{it.ID, it.BusinessID, it.CategoryID, it.Name, it.PriceNPR, nullText(it.Description), nullText(it.ImageURL), it.IsAvailable, it.SortOrder}
	if s.caps.ItemVeg && it.IsVeg != nil {
		cols = append(cols, "is_veg")
		args = append(args, *it.IsVeg)
	}

	_, err := s.db.Exec(ctx, insertSQL("menu_items", cols), args...)
	if err != nil {
		return nil, fmt.Errorf("create item %q: %w", it.Name, err)
	}
	return &it, nil
}

func (s *LiveStore) UpdateItem(ctx context.Context, scope TenantScope, id string, patch ItemPatch) error {
	var sets []string
	var args []interface{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.PriceNPR != nil {
		add("price_npr", *patch.PriceNPR)
	}
	if patch.Description != nil {
		add("description", nullText(*patch.Description))
	}
	if patch.ImageURL != nil {
		add("image_url", nullText(*patch.ImageURL))
	}
	if patch.IsAvailable != nil {
		add("is_available", *patch.IsAvailable)
	}
	if patch.IsVeg != nil {
		add("is_veg", *patch.IsVeg)
	}
	if patch.SortOrder != nil {
		add("sort_order", *patch.SortOrder)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id, scope.BusinessID)
	sql := fmt.Sprintf(`UPDATE menu_items SET %s WHERE id = $%d AND business_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (s *LiveStore) FindVariant(ctx context.Context, scope TenantScope, itemID, name string) (*Variant, error) {
	cols := "id, name, price_npr, is_active, sort_order"
	if s.caps.VariantVeg {
		cols += ", is_veg"
	}
	row := s.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM menu_item_variants
		WHERE menu_item_id = $1 AND lower(name) = lower($2)
		LIMIT 1`, cols),
		itemID, name)

	var (
		id pgtype.UUID
		v  Variant
	)
	dest := []interface{}{&id, &v.Name, &v.PriceNPR, &v.IsActive, &v.SortOrder}
	var veg pgtype.Bool
	if s.caps.VariantVeg {
		dest = append(dest, &veg)
	}
	err := row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find variant: %w", err)
	}
	v.ID = pgUUIDString(id)
	v.MenuItemID = itemID
	if s.caps.VariantVeg && veg.Valid {
		v.IsVeg = &veg.Bool
	}
	return &v, nil
}

func (s *LiveStore) CreateVariant(ctx context.Context, _ TenantScope, v Variant) (*Variant, error) {
	v.ID = uuid.NewString()

	cols := []string{"id", "menu_item_id", "name", "price_npr", "is_active", "sort_order"}
	args := []interface{}{v.ID, v.MenuItemID, v.Name, v.PriceNPR, v.IsActive, v.SortOrder}
	if s.caps.VariantVeg {
		cols = append(cols, "is_veg")
		args = append(args, nullBoolPtr(v.IsVeg))
	}

	_, err := s.db.Exec(ctx, insertSQL("menu_item_variants", cols), args...)
	if err != nil {
		return nil, fmt.Errorf("create variant %q: %w", v.Name, err)
	}
	return &v, nil
}

func (s *LiveStore) UpdateVariant(ctx context.Context, _ TenantScope, id string, patch VariantPatch) error {
	var sets []string
	var args []interface{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.PriceNPR != nil {
		add("price_npr", *patch.PriceNPR)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.SetIsVeg {
		add("is_veg", nullBoolPtr(patch.IsVeg))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE menu_item_variants SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	return nil
}

// LoadSnapshot reads the tenant's full catalog. The dry-run driver seeds its
// simulated store from it; the read-back API serves it directly.
func (p *PgProvider) LoadSnapshot(ctx context.Context, scope TenantScope, caps CapabilitySet) (*Snapshot, error) {
	snap := &Snapshot{}
	store := &LiveStore{db: p.db, caps: caps}

	rows, err := p.db.Query(ctx, `
		SELECT id, name, description, parent_id, sort_order, is_active
		FROM menu_categories WHERE business_id = $1
		ORDER BY sort_order, name`, scope.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, parent pgtype.UUID
			desc       pgtype.Text
			c          Category
		)
		if err := rows.Scan(&id, &c.Name, &desc, &parent, &c.SortOrder, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ID = pgUUIDString(id)
		c.BusinessID = scope.BusinessID
		c.Description = desc.String
		if parent.Valid {
			pid := pgUUIDString(parent)
			c.ParentID = &pid
		}
		snap.Categories = append(snap.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	if err := store.loadItems(ctx, scope, snap); err != nil {
		return nil, err
	}
	if caps.VariantTable {
		if err := store.loadVariants(ctx, scope, snap); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (s *LiveStore) loadItems(ctx context.Context, scope TenantScope, snap *Snapshot) error {
	cols := "id, category_id, name, price_npr, description, image_url, is_available, sort_order"
	if s.caps.ItemVeg {
		cols += ", is_veg"
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM menu_items WHERE business_id = $1
		ORDER BY sort_order, name`, cols), scope.BusinessID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, catID   pgtype.UUID
			desc, image pgtype.Text
			it          MenuItem
		)
		dest := []interface{}{&id, &catID, &it.Name, &it.PriceNPR, &desc, &image, &it.IsAvailable, &it.SortOrder}
		var veg pgtype.Bool
		if s.caps.ItemVeg {
			dest = append(dest, &veg)
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		it.ID = pgUUIDString(id)
		it.BusinessID = scope.BusinessID
		it.CategoryID = pgUUIDString(catID)
		it.Description = desc.String
		it.ImageURL = image.String
		if s.caps.ItemVeg && veg.Valid {
			it.IsVeg = &veg.Bool
		}
		snap.Items = append(snap.Items, it)
	}
	return rows.Err()
}

func (s *LiveStore) loadVariants(ctx context.Context, scope TenantScope, snap *Snapshot) error {
	cols := "v.id, v.menu_item_id, v.name, v.price_npr, v.is_active, v.sort_order"
	if s.caps.VariantVeg {
		cols += ", v.is_veg"
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM menu_item_variants v
		JOIN menu_items i ON i.id = v.menu_item_id
		WHERE i.business_id = $1
		ORDER BY v.sort_order, v.name`, cols), scope.BusinessID)
	if err != nil {
		return fmt.Errorf("load variants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, itemID pgtype.UUID
			v          Variant
		)
		dest := []interface{}{&id, &itemID, &v.Name, &v.PriceNPR, &v.IsActive, &v.SortOrder}
		var veg pgtype.Bool
		if s.caps.VariantVeg {
			dest = append(dest, &veg)
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		v.ID = pgUUIDString(id)
		v.MenuItemID = pgUUIDString(itemID)
		if s.caps.VariantVeg && veg.Valid {
			v.IsVeg = &veg.Bool
		}
		snap.Variants = append(snap.Variants, v)
	}
	return rows.Err()
}

// SQL value helpers.

func insertSQL(table string, cols []string) string {
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func nullBoolPtr(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}

func pgUUIDString(v pgtype.UUID) string {
	if !v.Valid {
		return ""
	}
	return uuid.UUID(v.Bytes).String()
}

func toPgUUIDPtr(s *string) pgtype.UUID {
	if s == nil {
		return pgtype.UUID{}
	}
	u, err := uuid.Parse(*s)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: u, Valid: true}
}
