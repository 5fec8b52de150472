package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/innserve/menuimport/internal/catalog"
)

// maxRequestBody caps what the handlers will read before the engine's own
// file-size ceiling applies.
const maxRequestBody = 32 << 20

// ImportResponse is the JSON envelope for a completed import call.
type ImportResponse struct {
	Success bool                   `json:"success"`
	Summary *catalog.ImportSummary `json:"summary"`
}

// handleImport runs a menu CSV import for the tenant in X-Business-ID.
// ?mode=dry_run previews the import without writing; any other mode commits.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	scope, err := tenantScope(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	data, err := readCSVBody(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	mode := catalog.ParseMode(r.URL.Query().Get("mode"))
	summary, err := s.service.Import(r.Context(), scope, data, mode)
	if err != nil {
		// The zero-valid-rows case carries a summary with row errors.
		s.respondErrorSummary(w, r, err, http.StatusUnprocessableEntity, summary)
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{Success: true, Summary: summary})
}

// handleTemplate serves the CSV header template with one sample row.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="menu_import_template.csv"`)
	_, _ = io.WriteString(w, catalog.TemplateCSV())
}

// handleMenu returns the tenant's current catalog as a two-level tree, the
// read-back operators use to verify an import landed as previewed.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	scope, err := tenantScope(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	snap, err := s.service.LoadSnapshot(r.Context(), scope)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, buildMenuTree(snap))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tenantScope resolves the tenant from the X-Business-ID header. Role
// resolution happens upstream; this layer only threads the scope through.
func tenantScope(r *http.Request) (catalog.TenantScope, error) {
	id := strings.TrimSpace(r.Header.Get("X-Business-ID"))
	if id == "" {
		return catalog.TenantScope{}, errors.New("missing X-Business-ID header")
	}
	return catalog.TenantScope{BusinessID: id}, nil
}

// readCSVBody accepts either a multipart upload with a "file" field or a
// raw CSV body.
func readCSVBody(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxRequestBody); err != nil {
			return nil, fmt.Errorf("parse upload: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("no file provided")
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// Menu tree view models.

type menuVariantView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PriceNPR  int    `json:"price_npr"`
	IsActive  bool   `json:"is_active"`
	IsVeg     *bool  `json:"is_veg"`
	SortOrder int    `json:"sort_order"`
}

type menuItemView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	PriceNPR    int               `json:"price_npr"`
	Description string            `json:"description,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	IsAvailable bool              `json:"is_available"`
	IsVeg       *bool             `json:"is_veg,omitempty"`
	SortOrder   int               `json:"sort_order"`
	Variants    []menuVariantView `json:"variants,omitempty"`
}

type menuCategoryView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	SortOrder   int                `json:"sort_order"`
	IsActive    bool               `json:"is_active"`
	Items       []menuItemView     `json:"items,omitempty"`
	Children    []menuCategoryView `json:"children,omitempty"`
}

// buildMenuTree shapes a flat snapshot into the two-level category tree.
func buildMenuTree(snap *catalog.Snapshot) []menuCategoryView {
	variantsByItem := make(map[string][]menuVariantView)
	for _, v := range snap.Variants {
		variantsByItem[v.MenuItemID] = append(variantsByItem[v.MenuItemID], menuVariantView{
			ID:        v.ID,
			Name:      v.Name,
			PriceNPR:  v.PriceNPR,
			IsActive:  v.IsActive,
			IsVeg:     v.IsVeg,
			SortOrder: v.SortOrder,
		})
	}

	itemsByCategory := make(map[string][]menuItemView)
	for _, it := range snap.Items {
		itemsByCategory[it.CategoryID] = append(itemsByCategory[it.CategoryID], menuItemView{
			ID:          it.ID,
			Name:        it.Name,
			PriceNPR:    it.PriceNPR,
			Description: it.Description,
			ImageURL:    it.ImageURL,
			IsAvailable: it.IsAvailable,
			IsVeg:       it.IsVeg,
			SortOrder:   it.SortOrder,
			Variants:    variantsByItem[it.ID],
		})
	}

	childrenByParent := make(map[string][]menuCategoryView)
	var roots []menuCategoryView
	for _, c := range snap.Categories {
		view := menuCategoryView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			SortOrder:   c.SortOrder,
			IsActive:    c.IsActive,
			Items:       itemsByCategory[c.ID],
		}
		if c.ParentID != nil {
			childrenByParent[*c.ParentID] = append(childrenByParent[*c.ParentID], view)
		} else {
			roots = append(roots, view)
		}
	}
	for i := range roots {
		roots[i].Children = childrenByParent[roots[i].ID]
	}
	return roots
}
