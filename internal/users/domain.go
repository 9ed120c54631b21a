package users

import (
	"time"

	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Principal is a local identity record. Role is fixed at creation; the
// membership set is mutated only through subject membership operations.
type Principal struct {
	ID           shared.ID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	CampusID     string      `json:"campus_id,omitempty"`
	Role         shared.Role `json:"role"`
	SubjectIDs   []shared.ID `json:"subject_ids"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
