package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
	"github.com/kopinusa/storefront/internal/core/ports"
	"github.com/kopinusa/storefront/internal/core/validation"
)

const defaultActivityLimit = 20

// AdminHandler serves the back office: the dashboard, the activity feed and
// one list page per entity.
type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Register mounts the entity pages under g.
func (h *AdminHandler) Register(g *echo.Group) {
	g.GET("/dashboard", h.Dashboard)
	g.GET("/activity", h.Activity)

	mountEntity(g.Group("/users"), h.admin.Users)
	mountEntity(g.Group("/menus"), h.admin.Menus)
	mountEntity(g.Group("/variants"), h.admin.Variants)
	mountEntity(g.Group("/orders"), h.admin.Orders)
}

// Dashboard returns the back-office summary.
//
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Success      200  {object}  domain.Dashboard
// @Failure      403  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	d, err := h.admin.Dashboard(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

type activityResponse struct {
	Activity []domain.AdminActivity `json:"activity"`
}

// Activity returns the most recent back-office mutations.
//
// @Summary      Admin activity feed
// @Tags         admin
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries"
// @Success      200    {object}  activityResponse
// @Router       /admin/activity [get]
func (h *AdminHandler) Activity(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	limit := defaultActivityLimit
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	entries, err := h.admin.Activity(c.Request().Context(), sess, limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.AdminActivity{}
	}
	return c.JSON(http.StatusOK, activityResponse{Activity: entries})
}

// controllerFunc resolves the session's controller for one entity kind.
type controllerFunc[T any] func(sess *domain.Session) (*listing.Controller[T], error)

// entityHandler exposes one listing.Controller over HTTP. The list endpoint
// mirrors the search box, filter dropdowns and sort menu; the dialog
// endpoints mirror the create/edit/delete dialog.
type entityHandler[T any] struct {
	controller controllerFunc[T]
}

func mountEntity[T any](g *echo.Group, ctrl func(*domain.Session) (*listing.Controller[T], error)) {
	h := &entityHandler[T]{controller: ctrl}

	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	g.GET("/dialog", h.Dialog)
	g.POST("/dialog", h.OpenDialog)
	g.PATCH("/dialog", h.SetField)
	g.DELETE("/dialog", h.CloseDialog)
	g.POST("/dialog/submit", h.SubmitDialog)
}

type listResponse[T any] struct {
	listing.Page[T]
	LoadError string `json:"load_error,omitempty"`
}

type dialogResponse struct {
	Dialog *listing.DialogView `json:"dialog"`
	Error  string              `json:"error,omitempty"`
}

type openDialogRequest struct {
	Mode listing.Mode `json:"mode"`
	ID   string       `json:"id"`
}

type setFieldRequest struct {
	Field string `json:"field" validate:"notblank"`
	Value string `json:"value"`
}

// resolve returns the session's controller, loading it on first use.
func (h *entityHandler[T]) resolve(c echo.Context) (*listing.Controller[T], error) {
	sess, err := requireSession(c)
	if err != nil {
		return nil, err
	}
	ctrl, err := h.controller(sess)
	if err != nil {
		return nil, err
	}
	if !ctrl.Loaded() {
		// A failed load leaves the list empty; List reports it.
		_ = ctrl.Load(c.Request().Context())
	}
	return ctrl, nil
}

// List filters and sorts the cached collection. refresh=true re-fetches it
// first. Facet filters are passed as query parameters named after the facet.
func (h *entityHandler[T]) List(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	ctrl, err := h.controller(sess)
	if err != nil {
		return err
	}

	var loadErr error
	if refresh, _ := strconv.ParseBool(c.QueryParam("refresh")); refresh || !ctrl.Loaded() {
		loadErr = ctrl.Load(c.Request().Context())
	}

	q := listing.Query{
		Search: c.QueryParam("q"),
		Sort:   listing.SortKey(c.QueryParam("sort")),
		Facets: make(map[string]string),
	}
	for name := range ctrl.Schema().Facets {
		if v := c.QueryParam(name); v != "" {
			q.Facets[name] = v
		}
	}

	resp := listResponse[T]{Page: ctrl.View(q)}
	if loadErr != nil {
		resp.LoadError = loadMessage(loadErr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *entityHandler[T]) Create(c echo.Context) error {
	ctrl, err := h.resolve(c)
	if err != nil {
		return err
	}
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	if err := ctrl.Create(c.Request().Context(), values); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, listResponse[T]{Page: ctrl.View(listing.Query{})})
}

func (h *entityHandler[T]) Update(c echo.Context) error {
	ctrl, err := h.resolve(c)
	if err != nil {
		return err
	}
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	if err := ctrl.Update(c.Request().Context(), c.Param("id"), values); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[T]{Page: ctrl.View(listing.Query{})})
}

func (h *entityHandler[T]) Delete(c echo.Context) error {
	ctrl, err := h.resolve(c)
	if err != nil {
		return err
	}
	if err := ctrl.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Dialog returns the open dialog; dialog is null when none is open.
func (h *entityHandler[T]) Dialog(c echo.Context) error {
	ctrl, err := h.resolve(c)
	if err != nil {
		return err
	}
	view, ok := ctrl.Dialog()
	if !ok {
		return c.JSON(http.StatusOK, dialogResponse{})
	}
	return c.JSON(http.StatusOK, dialogResponse{Dialog: &view})
}

// OpenDialog opens a create, edit or delete dialog, replacing any open one.
func (h *entityHandler[T]) OpenDialog(c echo.Context) error {
	ctrl, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req openDialogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	var view listing.DialogView
	switch req.Mode {
	case listing.ModeCreate:
		view, err = ctrl.OpenCreate()
	case listing.ModeEdit:
		view, err = ctrl.OpenEdit(req.ID)
	case listing.ModeDelete:
		view, err = ctrl.OpenDelete(req.ID)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "mode must be one of: create edit delete")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dialogResponse{Dialog: &view})
}

// SetField records one keystroke-level edit in the open dialog.
func (h *entityHandler[T]) SetField(c echo.Context) error {
	ctrl, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req setFieldRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	view, err := ctrl.SetField(req.Field, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dialogResponse{Dialog: &view})
}

func (h *entityHandler[T]) CloseDialog(c echo.Context) error {
	ctrl, err := h.resolve(c)
	if err != nil {
		return err
	}
	ctrl.Close()
	return c.NoContent(http.StatusNoContent)
}

// SubmitDialog submits the open dialog. A failure that leaves the dialog
// open is answered with the dialog so the form can show its errors.
func (h *entityHandler[T]) SubmitDialog(c echo.Context) error {
	ctrl, err := h.resolve(c)
	if err != nil {
		return err
	}
	err = ctrl.Submit(c.Request().Context())
	if err == nil {
		return c.JSON(http.StatusOK, dialogResponse{})
	}
	if errors.Is(err, domain.ErrSubmitInFlight) || errors.Is(err, domain.ErrNoDialog) {
		return err
	}
	view, open := ctrl.Dialog()
	if !open {
		return err
	}
	return c.JSON(submitFailureStatus(err), dialogResponse{Dialog: &view, Error: err.Error()})
}

func submitFailureStatus(err error) int {
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity
	}
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Status < http.StatusInternalServerError {
		return re.Status
	}
	return http.StatusBadGateway
}

func loadMessage(err error) string {
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Detail != "" {
		return re.Detail
	}
	return listing.GeneralErrorMessage
}
