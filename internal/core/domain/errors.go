package domain

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("access forbidden")
	ErrNotFound         = errors.New("resource not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrSelfDelete       = errors.New("cannot delete your own account")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrActionNotAllowed = errors.New("action not allowed")
	ErrNoDialog         = errors.New("no dialog is open")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be a positive number")
	ErrCartLineNotFound = errors.New("item is not in the cart")
	ErrItemUnavailable  = errors.New("item is currently unavailable")
)

// RemoteError is a non-2xx answer from the backend API. Detail is the
// backend's human-readable message and is shown to the operator verbatim.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(e.Status)
}

// IsRemoteStatus reports whether err is a RemoteError with the given status.
func IsRemoteStatus(err error, status int) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == status
}
