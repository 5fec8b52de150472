// Package catalog implements the menu catalog bulk-import engine.
//
// The engine turns an uploaded CSV into a two-level category hierarchy, a
// flat item table, and a per-item variant table. Re-importing the same file
// updates existing entities instead of duplicating them: resolution matches
// on case-insensitive natural keys (category name under a parent, item name
// under a category, variant name under an item) rather than stored IDs.
//
// Imports run in one of two modes sharing a single resolution algorithm:
// dry-run (simulated against an in-memory snapshot, no writes) and commit
// (real store writes). Both produce the same summary counts for the same
// starting state, which is what makes the dry-run preview trustworthy.
package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// TenantScope identifies the business whose catalog an operation acts on.
// Every store lookup and write is filtered by it; nothing in this package
// reads tenant identity from ambient context.
type TenantScope struct {
	BusinessID string
}

// Category is one node in the two-level menu hierarchy. A category with a
// non-nil ParentID is a child; a child's parent must itself be a root.
type Category struct {
	ID          string
	BusinessID  string
	Name        string
	Description string
	ParentID    *string
	SortOrder   int
	IsActive    bool
}

// IsRoot reports whether the category sits at the top of the hierarchy.
func (c Category) IsRoot() bool { return c.ParentID == nil }

// MenuItem is a single orderable entry under a category.
// IsVeg is nil when the backing store has no is_veg column.
type MenuItem struct {
	ID          string
	BusinessID  string
	CategoryID  string
	Name        string
	PriceNPR    int
	Description string
	ImageURL    string
	IsAvailable bool
	IsVeg       *bool
	SortOrder   int
}

// Variant is a named price option of a menu item (e.g. Small/Large).
// IsVeg is tri-state: nil means "inherit the parent item's flag", which is
// distinct from an explicit false.
type Variant struct {
	ID         string
	MenuItemID string
	Name       string
	PriceNPR   int
	IsActive   bool
	IsVeg      *bool
	SortOrder  int
}

// ImportRow is one validated CSV line. It lives only for the duration of a
// single import call and is never persisted.
type ImportRow struct {
	RowNo        int
	Category     string
	Subcategory  string
	Name         string
	PriceNPR     int
	Description  string
	ImageURL     string
	IsVeg        bool
	VariantName  string
	VariantPrice *int
	VariantIsVeg *bool
}

// RowError is a row-scoped problem: either a validation rejection or a store
// failure while resolving that row. Neither aborts the rest of the batch.
type RowError struct {
	RowNo   int    `json:"rowNo"`
	Message string `json:"message"`
}

// Warning is advisory output: in-file duplicates, skipped capabilities, and
// similar conditions that do not reject any row.
type Warning struct {
	Message string `json:"message"`
}

// ImportSummary aggregates the outcome of one import call.
//
// TotalRows = ValidRows + InvalidRows. InvalidRows counts only validation
// rejections; rows that validated but later failed at the store appear in
// Errors without changing ValidRows.
type ImportSummary struct {
	DryRun            bool       `json:"dryRun"`
	TotalRows         int        `json:"totalRows"`
	ValidRows         int        `json:"validRows"`
	InvalidRows       int        `json:"invalidRows"`
	CategoriesCreated int        `json:"categoriesCreated"`
	ItemsInserted     int        `json:"itemsInserted"`
	ItemsUpdated      int        `json:"itemsUpdated"`
	VariantsInserted  int        `json:"variantsInserted"`
	VariantsUpdated   int        `json:"variantsUpdated"`
	Errors            []RowError `json:"errors"`
	Warnings          []Warning  `json:"warnings"`
}

// Mode selects how the reconciliation driver persists its work.
type Mode string

const (
	// ModeDryRun simulates the import against an in-memory snapshot.
	ModeDryRun Mode = "dry_run"
	// ModeCommit performs real store writes.
	ModeCommit Mode = "import"
)

// ParseMode maps a request parameter to a Mode. Only "dry_run" selects the
// simulated driver; any other value commits.
func ParseMode(s string) Mode {
	if s == string(ModeDryRun) {
		return ModeDryRun
	}
	return ModeCommit
}
