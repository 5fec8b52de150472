package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/innserve/menuimport/internal/catalog"
)

const csvHeader = "category,subcategory,name,price_npr,description,image_url,is_veg,variant_name,variant_price_npr,variant_is_veg"

type fakeProvider struct {
	store *catalog.SimulatedStore
	caps  catalog.CapabilitySet
}

func (p *fakeProvider) Probe(context.Context, catalog.TenantScope) (catalog.CapabilitySet, error) {
	return p.caps, nil
}

func (p *fakeProvider) LoadSnapshot(context.Context, catalog.TenantScope, catalog.CapabilitySet) (*catalog.Snapshot, error) {
	return p.store.Snapshot(), nil
}

func (p *fakeProvider) Open(catalog.CapabilitySet) catalog.CatalogStore {
	return p.store
}

type failPinger struct{}

func (failPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(snap *catalog.Snapshot) *Server {
	provider := &fakeProvider{
		store: catalog.NewSimulatedStore(snap),
		caps:  catalog.CapabilitySet{ItemVeg: true, VariantVeg: true, VariantTable: true},
	}
	return NewServer(catalog.NewService(provider), nil, 0)
}

func TestHandleImport(t *testing.T) {
	srv := newTestServer(nil)
	body := csvHeader + "\nPizza,Classic,Margherita,500,Classic cheese,,Y,Small,400,Y\n"

	req := httptest.NewRequest(http.MethodPost, "/api/menu/import", strings.NewReader(body))
	req.Header.Set("X-Business-ID", "biz-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var resp ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Summary == nil {
		t.Fatalf("response = %+v, want success with summary", resp)
	}
	if resp.Summary.DryRun {
		t.Error("DryRun = true, want commit by default")
	}
	if resp.Summary.CategoriesCreated != 2 || resp.Summary.ItemsInserted != 1 || resp.Summary.VariantsInserted != 1 {
		t.Errorf("summary = %+v, want 2 categories, 1 item, 1 variant", resp.Summary)
	}
}

func TestHandleImport_DryRunMode(t *testing.T) {
	srv := newTestServer(nil)
	body := csvHeader + "\nPizza,,Margherita,500,,,Y,,,\n"

	req := httptest.NewRequest(http.MethodPost, "/api/menu/import?mode=dry_run", strings.NewReader(body))
	req.Header.Set("X-Business-ID", "biz-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	var resp ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Summary.DryRun {
		t.Error("DryRun = false, want true for mode=dry_run")
	}

	// The dry run must leave the catalog empty.
	menuReq := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	menuReq.Header.Set("X-Business-ID", "biz-1")
	menuRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(menuRec, menuReq)

	var tree []menuCategoryView
	if err := json.Unmarshal(menuRec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("decode menu: %v", err)
	}
	if len(tree) != 0 {
		t.Errorf("menu has %d categories after a dry run, want 0", len(tree))
	}
}

func TestHandleImport_MultipartUpload(t *testing.T) {
	srv := newTestServer(nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "menu.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(csvHeader + "\nDrinks,,Lassi,150,,,Y,,,\n")); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/menu/import", &buf)
	req.Header.Set("X-Business-ID", "biz-1")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
}

func TestHandleImport_MissingBusinessID(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/menu/import", strings.NewReader(csvHeader))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code == "" || resp.Message == "" {
		t.Errorf("response = %+v, want code and message", resp)
	}
}

func TestHandleImport_ZeroValidRowsCarriesSummary(t *testing.T) {
	srv := newTestServer(nil)
	body := csvHeader + "\n,,NoCategory,500,,,,,,\n"

	req := httptest.NewRequest(http.MethodPost, "/api/menu/import", strings.NewReader(body))
	req.Header.Set("X-Business-ID", "biz-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Summary == nil || len(resp.Summary.Errors) != 1 {
		t.Fatalf("response = %+v, want summary with the row error", resp)
	}
	if resp.Summary.Errors[0].Message != "Category is required." {
		t.Errorf("row error = %q", resp.Summary.Errors[0].Message)
	}
}

func TestHandleTemplate(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/menu/import/template", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "category,") {
		t.Errorf("body = %q, want the CSV header", rec.Body.String())
	}
}

func TestHandleMenu(t *testing.T) {
	parent := "cat-1"
	snap := &catalog.Snapshot{
		Categories: []catalog.Category{
			{ID: "cat-1", BusinessID: "biz-1", Name: "Pizza", SortOrder: 1, IsActive: true},
			{ID: "cat-2", BusinessID: "biz-1", Name: "Classic", ParentID: &parent, SortOrder: 1, IsActive: true},
		},
		Items: []catalog.MenuItem{
			{ID: "item-1", BusinessID: "biz-1", CategoryID: "cat-2", Name: "Margherita", PriceNPR: 500, IsAvailable: true},
		},
		Variants: []catalog.Variant{
			{ID: "var-1", MenuItemID: "item-1", Name: "Small", PriceNPR: 400, IsActive: true},
		},
	}
	srv := newTestServer(snap)

	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	req.Header.Set("X-Business-ID", "biz-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var tree []menuCategoryView
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("decode menu: %v", err)
	}
	if len(tree) != 1 || tree[0].Name != "Pizza" {
		t.Fatalf("tree = %+v, want one Pizza root", tree)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Name != "Classic" {
		t.Fatalf("children = %+v, want Classic under Pizza", tree[0].Children)
	}
	items := tree[0].Children[0].Items
	if len(items) != 1 || items[0].Name != "Margherita" {
		t.Fatalf("items = %+v, want Margherita under Classic", items)
	}
	if len(items[0].Variants) != 1 || items[0].Variants[0].Name != "Small" {
		t.Errorf("variants = %+v, want Small", items[0].Variants)
	}
}

func TestHandleHealth(t *testing.T) {
	t.Run("no pinger", func(t *testing.T) {
		srv := newTestServer(nil)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("failing pinger", func(t *testing.T) {
		provider := &fakeProvider{store: catalog.NewSimulatedStore(nil)}
		srv := NewServer(catalog.NewService(provider), failPinger{}, 0)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}
