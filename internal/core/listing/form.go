package listing

import "github.com/kopinusa/storefront/internal/core/validation"

// Mode is the kind of dialog currently open.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeDelete Mode = "delete"
)

// Values are the raw field values of a dialog form.
type Values map[string]string

// Form adapts one entity type to the create/edit dialog.
type Form[T any] interface {
	// Defaults pre-populates the create dialog.
	Defaults() Values
	// FromItem pre-populates the edit dialog.
	FromItem(item T) Values
	// Validate checks values against the loaded collection. editingID is
	// empty in create mode.
	Validate(mode Mode, values Values, items []T, editingID string) *validation.Errors
	// Payload builds the request body. Only called after Validate passed.
	Payload(mode Mode, values Values) any
}
