package catalog

// capability.go detects which optional parts of the schema exist at call
// time. Older deployments may lack the is_veg columns or the whole variant
// table; the import degrades gracefully instead of failing, but a real
// connectivity or permission problem must still surface as a hard error.
// Capabilities are re-probed on every import call — the schema can change
// between deployments, so a cached flag is never trusted.

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CapabilitySet records which optional store features are present for the
// duration of one import call.
type CapabilitySet struct {
	// ItemVeg: menu_items has an is_veg column.
	ItemVeg bool
	// VariantVeg: menu_item_variants has an is_veg column.
	VariantVeg bool
	// VariantTable: menu_item_variants exists at all.
	VariantTable bool
}

// CapabilityProber resolves a CapabilitySet against the live store.
// It is an injectable strategy so tests (and non-Postgres stores) can supply
// their own detection.
type CapabilityProber interface {
	Probe(ctx context.Context, scope TenantScope) (CapabilitySet, error)
}

// StaticCapabilities is a CapabilityProber returning a fixed set. Used by
// the simulated store in tests and wherever the schema is known up front.
type StaticCapabilities CapabilitySet

func (s StaticCapabilities) Probe(context.Context, TenantScope) (CapabilitySet, error) {
	return CapabilitySet(s), nil
}

// pgProber probes a Postgres schema with minimal single-row reads and
// classifies failures by SQLSTATE.
type pgProber struct {
	db DBTX
}

// NewPgProber returns a CapabilityProber for a Postgres-backed store.
func NewPgProber(db DBTX) CapabilityProber {
	return &pgProber{db: db}
}

func (p *pgProber) Probe(ctx context.Context, scope TenantScope) (CapabilitySet, error) {
	var caps CapabilitySet

	itemVeg, err := p.probe(ctx, `SELECT is_veg FROM menu_items WHERE business_id = $1 LIMIT 1`, scope.BusinessID)
	if err != nil {
		return caps, err
	}
	caps.ItemVeg = itemVeg

	variantTable, err := p.probe(ctx, `SELECT id FROM menu_item_variants LIMIT 1`)
	if err != nil {
		return caps, err
	}
	caps.VariantTable = variantTable

	if caps.VariantTable {
		variantVeg, err := p.probe(ctx, `SELECT is_veg FROM menu_item_variants LIMIT 1`)
		if err != nil {
			return caps, err
		}
		caps.VariantVeg = variantVeg
	}

	return caps, nil
}

// probe runs a minimal query and reports whether the referenced column and
// table exist. Version-skew failures report absence; anything else is a
// hard error.
func (p *pgProber) probe(ctx context.Context, sql string, args ...interface{}) (bool, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return classifyProbeError(err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return classifyProbeError(err)
	}
	return true, nil
}

// classifyProbeError distinguishes "the schema is older than this code"
// from genuine failures. Postgres reports undefined_column (42703) and
// undefined_table (42P01); the message fallback covers stores that only
// surface text.
func classifyProbeError(err error) (bool, error) {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42703", "42P01":
			return false, nil
		}
		return false, err
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"unknown column", "no such column", "unknown table", "no such table", "does not exist"} {
		if strings.Contains(msg, pattern) {
			return false, nil
		}
	}
	return false, err
}

// capabilityWarnings tells the operator which upgrade would enable the data
// the file carries but the store cannot hold.
func capabilityWarnings(caps CapabilitySet, rows []ImportRow) []Warning {
	var warnings []Warning

	if !caps.ItemVeg {
		warnings = append(warnings, Warning{
			Message: "menu_items has no is_veg column; vegetarian flags were not imported. Run the is_veg migration to enable them.",
		})
	}

	anyVariant := false
	anyVariantVeg := false
	for _, r := range rows {
		if r.VariantName != "" {
			anyVariant = true
		}
		if r.VariantIsVeg != nil {
			anyVariantVeg = true
		}
	}

	if !caps.VariantTable && anyVariant {
		warnings = append(warnings, Warning{
			Message: "menu_item_variants table does not exist; variant columns were skipped. Run the variants migration to enable them.",
		})
	}
	if caps.VariantTable && !caps.VariantVeg && anyVariantVeg {
		warnings = append(warnings, Warning{
			Message: "menu_item_variants has no is_veg column; variant vegetarian flags were not imported. Run the variant is_veg migration to enable them.",
		})
	}

	return warnings
}
