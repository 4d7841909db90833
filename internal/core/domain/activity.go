package domain

import "time"

// AdminActivity records one successful admin mutation for the audit trail.
type AdminActivity struct {
	ActorID    string    `json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	TargetID   string    `json:"target_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
