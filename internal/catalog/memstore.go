package catalog

// memstore.go is the simulated half of the dual-mode driver: an in-memory
// CatalogStore seeded from a snapshot of the live catalog. Creates allocate
// synthetic "new-<n>" identifiers and nothing ever reaches the real store,
// which is exactly what a dry run needs.

import (
	"context"
	"fmt"
	"strings"
)

// SimulatedStore implements CatalogStore over in-memory maps.
// It is not safe for concurrent use; one import call owns one instance.
type SimulatedStore struct {
	categories map[string]*Category // key: parent \x00 lower(name)
	items      map[string]*MenuItem // key: categoryID \x00 lower(name)
	variants   map[string]*Variant  // key: itemID \x00 lower(name)
	nextID     int
}

// NewSimulatedStore seeds a simulated store from a catalog snapshot.
func NewSimulatedStore(snap *Snapshot) *SimulatedStore {
	s := &SimulatedStore{
		categories: make(map[string]*Category),
		items:      make(map[string]*MenuItem),
		variants:   make(map[string]*Variant),
	}
	if snap == nil {
		return s
	}
	for _, c := range snap.Categories {
		c := c
		s.categories[categoryKey(c.ParentID, c.Name)] = &c
	}
	for _, it := range snap.Items {
		it := it
		s.items[childKey(it.CategoryID, it.Name)] = &it
	}
	for _, v := range snap.Variants {
		v := v
		s.variants[childKey(v.MenuItemID, v.Name)] = &v
	}
	return s
}

// Snapshot returns a copy of the store's current contents.
func (s *SimulatedStore) Snapshot() *Snapshot {
	snap := &Snapshot{}
	for _, c := range s.categories {
		snap.Categories = append(snap.Categories, *c)
	}
	for _, it := range s.items {
		snap.Items = append(snap.Items, *it)
	}
	for _, v := range s.variants {
		snap.Variants = append(snap.Variants, *v)
	}
	return snap
}

func categoryKey(parentID *string, name string) string {
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	return parent + "\x00" + strings.ToLower(name)
}

func childKey(ownerID, name string) string {
	return ownerID + "\x00" + strings.ToLower(name)
}

func (s *SimulatedStore) allocID() string {
	s.nextID++
	return fmt.Sprintf("new-%d", s.nextID)
}

func (s *SimulatedStore) FindCategory(_ context.Context, _ TenantScope, parentID *string, name string) (*Category, error) {
	if c, ok := s.categories[categoryKey(parentID, name)]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (s *SimulatedStore) CreateCategory(_ context.Context, scope TenantScope, c Category) (*Category, error) {
	if c.ParentID != nil {
		parent := s.categoryByID(*c.ParentID)
		if parent == nil {
			return nil, fmt.Errorf("parent category %s not found", *c.ParentID)
		}
		if !parent.IsRoot() {
			return nil, fmt.Errorf("category %q cannot nest under child category %q", c.Name, parent.Name)
		}
	}
	c.ID = s.allocID()
	c.BusinessID = scope.BusinessID
	s.categories[categoryKey(c.ParentID, c.Name)] = &c
	copied := c
	return &copied, nil
}

func (s *SimulatedStore) categoryByID(id string) *Category {
	for _, c := range s.categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *SimulatedStore) MaxCategorySort(_ context.Context, _ TenantScope, parentID *string) (int, error) {
	max := 0
	for _, c := range s.categories {
		if sameParent(c.ParentID, parentID) && c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *SimulatedStore) FindItem(_ context.Context, _ TenantScope, categoryID, name string) (*MenuItem, error) {
	if it, ok := s.items[childKey(categoryID, name)]; ok {
		copied := *it
		return &copied, nil
	}
	return nil, nil
}

func (s *SimulatedStore) CreateItem(_ context.Context, scope TenantScope, it MenuItem) (*MenuItem, error) {
	it.ID = s.allocID()
	it.BusinessID = scope.BusinessID
	s.items[childKey(it.CategoryID, it.Name)] = &it
	copied := it
	return &copied, nil
}

func (s *SimulatedStore) UpdateItem(_ context.Context, _ TenantScope, id string, patch ItemPatch) error {
	for _, it := range s.items {
		if it.ID != id {
			continue
		}
		if patch.PriceNPR != nil {
			it.PriceNPR = *patch.PriceNPR
		}
		if patch.Description != nil {
			it.Description = *patch.Description
		}
		if patch.ImageURL != nil {
			it.ImageURL = *patch.ImageURL
		}
		if patch.IsAvailable != nil {
			it.IsAvailable = *patch.IsAvailable
		}
		if patch.IsVeg != nil {
			veg := *patch.IsVeg
			it.IsVeg = &veg
		}
		if patch.SortOrder != nil {
			it.SortOrder = *patch.SortOrder
		}
		return nil
	}
	return fmt.Errorf("menu item %s not found", id)
}

func (s *SimulatedStore) FindVariant(_ context.Context, _ TenantScope, itemID, name string) (*Variant, error) {
	if v, ok := s.variants[childKey(itemID, name)]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, nil
}

func (s *SimulatedStore) CreateVariant(_ context.Context, _ TenantScope, v Variant) (*Variant, error) {
	v.ID = s.allocID()
	s.variants[childKey(v.MenuItemID, v.Name)] = &v
	copied := v
	return &copied, nil
}

func (s *SimulatedStore) UpdateVariant(_ context.Context, _ TenantScope, id string, patch VariantPatch) error {
	for _, v := range s.variants {
		if v.ID != id {
			continue
		}
		if patch.PriceNPR != nil {
			v.PriceNPR = *patch.PriceNPR
		}
		if patch.IsActive != nil {
			v.IsActive = *patch.IsActive
		}
		if patch.SetIsVeg {
			v.IsVeg = patch.IsVeg
		}
		return nil
	}
	return fmt.Errorf("variant %s not found", id)
}
