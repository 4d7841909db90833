package listing

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/validation"
)

// GeneralErrorMessage is shown in the dialog when a failure carries no
// backend detail.
const GeneralErrorMessage = "Something went wrong. Please try again."

// Action is a per-row operation offered to the operator.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Options configures what the operator may do with a collection.
type Options struct {
	// SelfID is the current session's identity. A row with this ID never
	// offers a delete action.
	SelfID      string
	AllowCreate bool
	AllowEdit   bool
	AllowDelete bool
	// ClearDelay overrides validation.ClearDelay for field errors.
	ClearDelay time.Duration
	// OnMutation runs after a successful create, edit or delete.
	OnMutation func(ctx context.Context, mode Mode, targetID string)
}

// Row is one rendered item with the actions available on it.
type Row[T any] struct {
	Item    T        `json:"item"`
	Actions []Action `json:"actions"`
}

// Page is the rendered list for a query.
type Page[T any] struct {
	Rows      []Row[T]  `json:"rows"`
	Total     int       `json:"total"`
	Matched   int       `json:"matched"`
	Sort      SortKey   `json:"sort"`
	SortKeys  []SortKey `json:"sort_keys"`
	CanCreate bool      `json:"can_create"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// DialogView is a snapshot of the open dialog.
type DialogView struct {
	Mode         Mode              `json:"mode"`
	TargetID     string            `json:"target_id,omitempty"`
	Values       Values            `json:"values,omitempty"`
	FieldErrors  map[string]string `json:"field_errors,omitempty"`
	GeneralError string            `json:"general_error,omitempty"`
	Submitting   bool              `json:"submitting"`
}

type dialog struct {
	mode         Mode
	targetID     string
	values       Values
	errors       *validation.FieldErrors
	generalError string
}

// Controller holds the last successfully fetched collection of T and the
// dialog the operator is working in. The collection is never live: changes
// made elsewhere show up only after the next Load.
type Controller[T any] struct {
	schema Schema[T]
	source Source[T]
	form   Form[T]
	opts   Options
	log    zerolog.Logger

	mu       sync.RWMutex
	items    []T
	loaded   bool
	loadedAt time.Time
	dialog   *dialog

	submitting atomic.Bool
}

func New[T any](schema Schema[T], source Source[T], form Form[T], opts Options, log zerolog.Logger) *Controller[T] {
	return &Controller[T]{
		schema: schema,
		source: source,
		form:   form,
		opts:   opts,
		log:    log.With().Str("collection", schema.Kind).Logger(),
	}
}

// Schema returns the controller's schema.
func (c *Controller[T]) Schema() Schema[T] {
	return c.schema
}

// Load replaces the collection with one full fetch. On failure the error is
// logged, the collection becomes empty and the error is returned; nothing is
// retried.
func (c *Controller[T]) Load(ctx context.Context) error {
	items, err := c.source.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	if err != nil {
		c.log.Error().Err(err).Msg("load collection failed")
		c.items = nil
		c.loadedAt = time.Time{}
		return err
	}
	c.items = items
	c.loadedAt = time.Now().UTC()
	c.log.Debug().Int("count", len(items)).Msg("collection loaded")
	return nil
}

// Loaded reports whether Load has run at least once.
func (c *Controller[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Items returns a copy of the cached collection.
func (c *Controller[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// View filters and sorts the cached collection.
func (c *Controller[T]) View(q Query) Page[T] {
	c.mu.RLock()
	items := c.items
	loadedAt := c.loadedAt
	c.mu.RUnlock()

	sorted := Apply(items, c.schema, q)
	rows := make([]Row[T], len(sorted))
	for i, item := range sorted {
		rows[i] = Row[T]{Item: item, Actions: c.actions(item)}
	}
	return Page[T]{
		Rows:      rows,
		Total:     len(items),
		Matched:   len(rows),
		Sort:      c.schema.ResolveSort(q.Sort),
		SortKeys:  c.schema.SortKeys(),
		CanCreate: c.opts.AllowCreate,
		LoadedAt:  loadedAt,
	}
}

func (c *Controller[T]) actions(item T) []Action {
	actions := make([]Action, 0, 2)
	if c.opts.AllowEdit {
		actions = append(actions, ActionEdit)
	}
	if c.canDelete(c.schema.ID(item)) {
		actions = append(actions, ActionDelete)
	}
	return actions
}

func (c *Controller[T]) canDelete(id string) bool {
	return c.opts.AllowDelete && (c.opts.SelfID == "" || id != c.opts.SelfID)
}

// OpenCreate opens the create dialog with the form defaults.
func (c *Controller[T]) OpenCreate() (DialogView, error) {
	if !c.opts.AllowCreate {
		return DialogView{}, domain.ErrActionNotAllowed
	}
	return c.open(ModeCreate, "", c.form.Defaults()), nil
}

// OpenEdit opens the edit dialog pre-populated from the cached item.
func (c *Controller[T]) OpenEdit(id string) (DialogView, error) {
	if !c.opts.AllowEdit {
		return DialogView{}, domain.ErrActionNotAllowed
	}
	item, ok := c.find(id)
	if !ok {
		return DialogView{}, domain.ErrNotFound
	}
	return c.open(ModeEdit, id, c.form.FromItem(item)), nil
}

// OpenDelete opens the delete confirmation for id.
func (c *Controller[T]) OpenDelete(id string) (DialogView, error) {
	if !c.opts.AllowDelete {
		return DialogView{}, domain.ErrActionNotAllowed
	}
	if !c.canDelete(id) {
		return DialogView{}, domain.ErrSelfDelete
	}
	if _, ok := c.find(id); !ok {
		return DialogView{}, domain.ErrNotFound
	}
	return c.open(ModeDelete, id, nil), nil
}

func (c *Controller[T]) open(mode Mode, id string, values Values) DialogView {
	if values == nil {
		values = Values{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	c.dialog = &dialog{
		mode:     mode,
		targetID: id,
		values:   values,
		errors:   validation.NewFieldErrors(c.opts.ClearDelay),
	}
	return c.viewLocked()
}

func (c *Controller[T]) find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.schema.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// SetField records an edit of one field. A visible error on that field
// starts its clear timer; it is not re-validated.
func (c *Controller[T]) SetField(field, value string) (DialogView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog == nil || c.dialog.mode == ModeDelete {
		return DialogView{}, domain.ErrNoDialog
	}
	c.dialog.values[field] = value
	c.dialog.errors.Touched(field)
	return c.viewLocked(), nil
}

// Dialog returns the open dialog, if any.
func (c *Controller[T]) Dialog() (DialogView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dialog == nil {
		return DialogView{}, false
	}
	return c.viewLocked(), true
}

// Close discards the open dialog.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Controller[T]) closeLocked() {
	if c.dialog != nil {
		c.dialog.errors.Stop()
		c.dialog = nil
	}
}

func (c *Controller[T]) viewLocked() DialogView {
	d := c.dialog
	return DialogView{
		Mode:         d.mode,
		TargetID:     d.targetID,
		Values:       maps.Clone(d.values),
		FieldErrors:  d.errors.Snapshot(),
		GeneralError: d.generalError,
		Submitting:   c.submitting.Load(),
	}
}

// Submit validates the open dialog, issues one backend call and, on success,
// re-fetches the whole collection and closes the dialog. Validation failures
// return *validation.Errors; backend failures leave the dialog open with a
// general error. A second Submit while one is in flight returns
// domain.ErrSubmitInFlight.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.mu.RLock()
	d := c.dialog
	c.mu.RUnlock()
	if d == nil {
		return domain.ErrNoDialog
	}
	return c.submit(ctx, d)
}

// submit runs d through validation and the backend. Errors are written back
// to d only while d is the open dialog.
func (c *Controller[T]) submit(ctx context.Context, d *dialog) error {
	if !c.submitting.CompareAndSwap(false, true) {
		return domain.ErrSubmitInFlight
	}
	defer c.submitting.Store(false)

	c.mu.Lock()
	mode, targetID, values := d.mode, d.targetID, maps.Clone(d.values)
	items := c.items
	c.mu.Unlock()

	var err error
	switch mode {
	case ModeCreate, ModeEdit:
		if verrs := c.form.Validate(mode, values, items, targetID); !verrs.Empty() {
			c.withDialog(d, func() {
				d.errors.Replace(verrs)
				d.generalError = ""
			})
			return verrs
		}
		payload := c.form.Payload(mode, values)
		if mode == ModeCreate {
			err = c.source.Create(ctx, payload)
		} else {
			err = c.source.Update(ctx, targetID, payload)
		}
	case ModeDelete:
		if !c.canDelete(targetID) {
			return domain.ErrSelfDelete
		}
		err = c.source.Delete(ctx, targetID)
	}

	if err != nil {
		c.log.Error().Err(err).Str("mode", string(mode)).Str("target_id", targetID).Msg("submit failed")
		c.withDialog(d, func() {
			d.errors.Replace(nil)
			d.generalError = generalMessage(err)
		})
		return err
	}

	c.log.Info().Str("mode", string(mode)).Str("target_id", targetID).Msg("submitted")
	if c.opts.OnMutation != nil {
		c.opts.OnMutation(ctx, mode, targetID)
	}

	// The mutation stands even if the re-fetch fails; Load already logged it.
	_ = c.Load(ctx)

	c.mu.Lock()
	if c.dialog == d {
		c.closeLocked()
	}
	c.mu.Unlock()
	return nil
}

// withDialog runs fn under the lock if d is still the open dialog.
func (c *Controller[T]) withDialog(d *dialog, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog == d {
		fn()
	}
}

// Create submits values as a new item without touching the open dialog.
func (c *Controller[T]) Create(ctx context.Context, values Values) error {
	if !c.opts.AllowCreate {
		return domain.ErrActionNotAllowed
	}
	return c.submit(ctx, detached(ModeCreate, "", c.form.Defaults(), values))
}

// Update overlays values on the cached item id and submits it without
// touching the open dialog.
func (c *Controller[T]) Update(ctx context.Context, id string, values Values) error {
	if !c.opts.AllowEdit {
		return domain.ErrActionNotAllowed
	}
	item, ok := c.find(id)
	if !ok {
		return domain.ErrNotFound
	}
	return c.submit(ctx, detached(ModeEdit, id, c.form.FromItem(item), values))
}

// Remove deletes id without touching the open dialog.
func (c *Controller[T]) Remove(ctx context.Context, id string) error {
	if !c.opts.AllowDelete {
		return domain.ErrActionNotAllowed
	}
	if !c.canDelete(id) {
		return domain.ErrSelfDelete
	}
	if _, ok := c.find(id); !ok {
		return domain.ErrNotFound
	}
	return c.submit(ctx, detached(ModeDelete, id, nil, nil))
}

// detached builds a one-shot dialog that is never installed as the open one.
func detached(mode Mode, id string, base, overlay Values) *dialog {
	values := Values{}
	maps.Copy(values, base)
	maps.Copy(values, overlay)
	return &dialog{mode: mode, targetID: id, values: values}
}

func generalMessage(err error) string {
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Detail != "" {
		return re.Detail
	}
	return GeneralErrorMessage
}
