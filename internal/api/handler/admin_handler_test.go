package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/api/middleware"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
	"github.com/kopinusa/storefront/internal/core/ports"
	"github.com/kopinusa/storefront/internal/core/service"
	"github.com/kopinusa/storefront/internal/core/validation"
)

type memMenuSource struct {
	mu      sync.Mutex
	items   []domain.MenuItem
	listErr error
}

func (s *memMenuSource) List(context.Context) ([]domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.MenuItem(nil), s.items...), nil
}

func (s *memMenuSource) Create(_ context.Context, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := payload.(map[string]string)
	s.items = append(s.items, domain.MenuItem{
		ID:          fmt.Sprintf("m%d", len(s.items)+1),
		Name:        p["name"],
		Category:    p["category"],
		IsAvailable: true,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (s *memMenuSource) Update(context.Context, string, any) error { return nil }

func (s *memMenuSource) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.items {
		if m.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return &domain.RemoteError{Status: http.StatusNotFound, Detail: "Menu item not found"}
}

type nameForm struct{}

func (nameForm) Defaults() listing.Values { return listing.Values{"name": "", "category": ""} }

func (nameForm) FromItem(m domain.MenuItem) listing.Values {
	return listing.Values{"name": m.Name, "category": m.Category}
}

func (nameForm) Validate(_ listing.Mode, v listing.Values, _ []domain.MenuItem, _ string) *validation.Errors {
	errs := &validation.Errors{}
	if validation.IsBlank(v["name"]) {
		errs.Add("name", "is required")
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

func (nameForm) Payload(_ listing.Mode, v listing.Values) any {
	return map[string]string{"name": v["name"], "category": v["category"]}
}

type stubAdminService struct {
	ports.AdminService
	menus *listing.Controller[domain.MenuItem]
}

func (s *stubAdminService) Menus(sess *domain.Session) (*listing.Controller[domain.MenuItem], error) {
	if !sess.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.menus, nil
}

func newAdminServer(t *testing.T, src *memMenuSource) *echo.Echo {
	t.Helper()
	ctrl := listing.New[domain.MenuItem](service.MenuSchema, src, nameForm{}, listing.Options{
		AllowCreate: true,
		AllowEdit:   true,
		AllowDelete: true,
	}, zerolog.Nop())

	e := echo.New()
	e.Validator = validation.New()
	g := e.Group("/admin", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetSession(c, testSession("admin", domain.RoleAdmin))
			return next(c)
		}
	})
	NewAdminHandler(&stubAdminService{menus: ctrl}).Register(g)
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) listResponse[domain.MenuItem] {
	t.Helper()
	var page listResponse[domain.MenuItem]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v: %s", err, rec.Body.String())
	}
	return page
}

func TestEntityHandler_ListFiltersAndSorts(t *testing.T) {
	now := time.Now()
	src := &memMenuSource{items: []domain.MenuItem{
		{ID: "1", Name: "Kopi Susu", Category: "coffee", Price: 22000, IsAvailable: true, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "2", Name: "Es Teh", Category: "tea", Price: 12000, IsAvailable: true, CreatedAt: now.Add(-time.Hour)},
		{ID: "3", Name: "Kopi Hitam", Category: "coffee", Price: 15000, IsAvailable: false, CreatedAt: now},
	}}
	e := newAdminServer(t, src)

	rec := serve(e, http.MethodGet, "/admin/menus?q=kopi&category=coffee&sort=price-asc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	page := decodePage(t, rec)
	if page.Total != 3 || page.Matched != 2 {
		t.Fatalf("expected 2 of 3, got %d of %d", page.Matched, page.Total)
	}
	if page.Rows[0].Item.ID != "3" || page.Rows[1].Item.ID != "1" {
		t.Fatalf("unexpected order: %s, %s", page.Rows[0].Item.ID, page.Rows[1].Item.ID)
	}
	if page.Sort != listing.SortPriceAsc {
		t.Fatalf("expected price-asc, got %s", page.Sort)
	}
}

func TestEntityHandler_ListReportsLoadError(t *testing.T) {
	src := &memMenuSource{listErr: &domain.RemoteError{Status: http.StatusBadGateway, Detail: "menu service down"}}
	e := newAdminServer(t, src)

	rec := serve(e, http.MethodGet, "/admin/menus", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page := decodePage(t, rec)
	if page.LoadError != "menu service down" || page.Matched != 0 {
		t.Fatalf("expected empty list with load error, got %+v", page)
	}
}

func TestEntityHandler_DialogFlow(t *testing.T) {
	src := &memMenuSource{}
	e := newAdminServer(t, src)

	rec := serve(e, http.MethodPost, "/admin/menus/dialog", `{"mode":"create"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("open: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodPost, "/admin/menus/dialog/submit", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("submit blank: expected 422, got %d", rec.Code)
	}
	var failed dialogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &failed); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if failed.Dialog == nil || failed.Dialog.FieldErrors["name"] != "is required" {
		t.Fatalf("expected name error in open dialog, got %+v", failed.Dialog)
	}

	rec = serve(e, http.MethodPatch, "/admin/menus/dialog", `{"field":"name","value":"Kopi Gula Aren"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set field: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodPost, "/admin/menus/dialog/submit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodGet, "/admin/menus/dialog", "")
	var closed dialogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &closed); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if closed.Dialog != nil {
		t.Fatalf("dialog should close after submit, got %+v", closed.Dialog)
	}

	page := decodePage(t, serve(e, http.MethodGet, "/admin/menus", ""))
	if page.Total != 1 || page.Rows[0].Item.Name != "Kopi Gula Aren" {
		t.Fatalf("expected refetched collection with new item, got %+v", page.Rows)
	}
}

func TestEntityHandler_DeleteFailureKeepsDialogOpen(t *testing.T) {
	src := &memMenuSource{items: []domain.MenuItem{{ID: "1", Name: "Kopi", CreatedAt: time.Now()}}}
	e := newAdminServer(t, src)

	if rec := serve(e, http.MethodPost, "/admin/menus/dialog", `{"mode":"delete","id":"1"}`); rec.Code != http.StatusOK {
		t.Fatalf("open delete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Someone else removed it in the meantime; the cached list still shows it.
	src.mu.Lock()
	src.items = nil
	src.mu.Unlock()

	rec := serve(e, http.MethodPost, "/admin/menus/dialog/submit", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected backend 404 passed through, got %d", rec.Code)
	}
	var resp dialogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dialog == nil || resp.Dialog.GeneralError != "Menu item not found" {
		t.Fatalf("expected general error in dialog, got %+v", resp.Dialog)
	}
}

func TestEntityHandler_CreateREST(t *testing.T) {
	src := &memMenuSource{}
	e := newAdminServer(t, src)

	rec := serve(e, http.MethodPost, "/admin/menus", `{"name":"Affogato","category":"coffee"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	page := decodePage(t, rec)
	if page.Total != 1 || page.Rows[0].Item.Name != "Affogato" {
		t.Fatalf("unexpected page: %+v", page.Rows)
	}
}

func TestEntityHandler_RESTDeleteKeepsOperatorDialog(t *testing.T) {
	src := &memMenuSource{items: []domain.MenuItem{{ID: "1", Name: "Kopi", CreatedAt: time.Now()}}}
	e := newAdminServer(t, src)

	serve(e, http.MethodPost, "/admin/menus/dialog", `{"mode":"create"}`)
	serve(e, http.MethodPatch, "/admin/menus/dialog", `{"field":"name","value":"Es Kopi Sus"}`)

	if rec := serve(e, http.MethodDelete, "/admin/menus/1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dialogResponse
	if err := json.Unmarshal(serve(e, http.MethodGet, "/admin/menus/dialog", "").Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dialog == nil || resp.Dialog.Values["name"] != "Es Kopi Sus" {
		t.Fatalf("expected the create dialog to survive, got %+v", resp.Dialog)
	}
}
