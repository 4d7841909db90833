package domain

import "time"

// Identity holds the public fields of the logged-in user.
type Identity struct {
	UserID      string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        Role   `json:"role"`
}

// IdentityFromUser copies the public fields of u.
func IdentityFromUser(u User) Identity {
	return Identity{
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
	}
}

// Session is the single authenticated identity bound to one browser context.
// Token is the backend credential attached to every authenticated call.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasRole reports whether the session's role is one of roles.
func (s *Session) HasRole(roles ...Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Identity.Role == r {
			return true
		}
	}
	return false
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
