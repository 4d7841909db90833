package domain

import (
	"strings"
	"time"
)

// Role gates which route groups an identity may enter.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalises a role string. Unknown values return ok=false.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Status filter values for users.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is an account as reported by the backend's user-management API.
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	TotalOrders int        `json:"total_orders"`
	TotalSpent  float64    `json:"total_spent"`
}

// Status returns "active" or "inactive".
func (u User) Status() string {
	if u.IsActive {
		return StatusActive
	}
	return StatusInactive
}
