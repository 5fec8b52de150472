package catalog

// service.go is the reconciliation driver: it runs the full import pipeline
// (tokenize, validate, detect duplicates, probe capabilities, resolve rows)
// in either mode and reports the summary.
//
// Fatal conditions — missing header column, empty file, zero valid rows, a
// probe hard failure — surface as a returned error before any row is
// resolved. Everything after that point is row-isolated: a store failure
// lands in the summary's error list and processing continues.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxFileSize is the largest CSV the engine accepts (10MB). Menu
// files are small; anything bigger is almost certainly the wrong upload.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// ErrEmptyFile is returned when the upload contains no usable rows.
var ErrEmptyFile = errors.New("empty file")

// Service runs menu catalog imports against a backing store.
// It holds no per-import state; concurrent calls for different tenants are
// fine. Concurrent imports for the same tenant are not coordinated.
type Service struct {
	provider    StoreProvider
	maxFileSize int64
	vegDefault  bool
}

// NewService creates an import service over the given store provider.
// The vegetarian flag falls back to true when a row leaves it unrecognized.
func NewService(provider StoreProvider) *Service {
	return &Service{
		provider:    provider,
		maxFileSize: DefaultMaxFileSize,
		vegDefault:  true,
	}
}

// SetMaxFileSize overrides the file-size ceiling.
func (s *Service) SetMaxFileSize(n int64) { s.maxFileSize = n }

// SetVegDefault overrides the fallback for unrecognized vegetarian flags.
func (s *Service) SetVegDefault(v bool) { s.vegDefault = v }

// Import runs one import call.
//
// ModeDryRun resolves every row against an in-memory snapshot of the
// tenant's catalog and writes nothing; ModeCommit writes through to the
// store. Both modes execute the same resolution algorithm over the same
// ordered rows, so their summary counts match for the same starting state.
//
// On a fatal condition the returned error is non-nil; the zero-valid-rows
// case additionally returns the all-zero summary carrying the row errors.
func (s *Service) Import(ctx context.Context, scope TenantScope, file []byte, mode Mode) (*ImportSummary, error) {
	if scope.BusinessID == "" {
		return nil, errors.New("business id is required")
	}
	if int64(len(file)) > s.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (limit %d)", len(file), s.maxFileSize)
	}

	start := time.Now()
	data := sanitizeUTF8(file)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	rows := Tokenize(data)
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	idx, err := ValidateHeader(rows[0])
	if err != nil {
		return nil, err
	}

	dataRows := rows[1:]
	if len(dataRows) == 0 {
		return nil, errors.New("no data rows after header")
	}

	summary := &ImportSummary{
		DryRun:    mode == ModeDryRun,
		TotalRows: len(dataRows),
		Errors:    []RowError{},
		Warnings:  []Warning{},
	}

	valid := make([]ImportRow, 0, len(dataRows))
	for i, row := range dataRows {
		ir, rerr := ParseRow(i+2, row, idx, s.vegDefault) // header is row 1
		if rerr != nil {
			summary.Errors = append(summary.Errors, *rerr)
			summary.InvalidRows++
			continue
		}
		valid = append(valid, *ir)
	}
	summary.ValidRows = len(valid)

	if len(valid) == 0 {
		return summary, errors.New(summary.Errors[0].Message)
	}

	summary.Warnings = append(summary.Warnings, DetectDuplicates(valid)...)

	caps, err := s.provider.Probe(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("probe store capabilities: %w", err)
	}
	summary.Warnings = append(summary.Warnings, capabilityWarnings(caps, valid)...)

	var store CatalogStore
	if mode == ModeDryRun {
		snap, err := s.provider.LoadSnapshot(ctx, scope, caps)
		if err != nil {
			return nil, fmt.Errorf("load catalog snapshot: %w", err)
		}
		store = NewSimulatedStore(snap)
	} else {
		store = s.provider.Open(caps)
	}

	// Rows run strictly in file order: later rows reuse categories and
	// items created by earlier rows in the same call.
	res := newResolver(store, caps, scope)
	for _, row := range valid {
		out, err := res.apply(ctx, row)
		summary.absorb(out)
		if err != nil {
			msg := MapError(err)
			summary.Errors = append(summary.Errors, RowError{RowNo: row.RowNo, Message: msg.Message})
			slog.Warn("import row failed",
				"business_id", scope.BusinessID,
				"row", row.RowNo,
				"error", err.Error(),
				"code", msg.Code,
			)
		}
	}

	slog.Info("menu import finished",
		"business_id", scope.BusinessID,
		"dry_run", summary.DryRun,
		"total_rows", summary.TotalRows,
		"invalid_rows", summary.InvalidRows,
		"categories_created", summary.CategoriesCreated,
		"items_inserted", summary.ItemsInserted,
		"items_updated", summary.ItemsUpdated,
		"variants_inserted", summary.VariantsInserted,
		"variants_updated", summary.VariantsUpdated,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

// LoadSnapshot exposes the tenant's current catalog for the read-back API.
func (s *Service) LoadSnapshot(ctx context.Context, scope TenantScope) (*Snapshot, error) {
	if scope.BusinessID == "" {
		return nil, errors.New("business id is required")
	}
	caps, err := s.provider.Probe(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("probe store capabilities: %w", err)
	}
	return s.provider.LoadSnapshot(ctx, scope, caps)
}

func (sum *ImportSummary) absorb(out rowOutcome) {
	sum.CategoriesCreated += out.categoriesCreated
	sum.ItemsInserted += out.itemsInserted
	sum.ItemsUpdated += out.itemsUpdated
	sum.VariantsInserted += out.variantsInserted
	sum.VariantsUpdated += out.variantsUpdated
	sum.Warnings = append(sum.Warnings, out.warnings...)
}

// TemplateCSV returns the downloadable header template with one sample row.
func TemplateCSV() string {
	return "category,subcategory,name,price_npr,description,image_url,is_veg,variant_name,variant_price_npr,variant_is_veg\n" +
		"Pizza,Classic,Margherita,500,Classic cheese,,Y,Small,500,Y\n"
}
