package subjects

import (
	"fmt"
	"time"

	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Semester is the academic term a subject runs in.
type Semester string

const (
	SemesterFall   Semester = "fall"
	SemesterSpring Semester = "spring"
	SemesterSummer Semester = "summer"
)

// ParseSemester validates a raw semester string.
func ParseSemester(raw string) (Semester, error) {
	switch Semester(raw) {
	case SemesterFall, SemesterSpring, SemesterSummer:
		return Semester(raw), nil
	}
	return "", fmt.Errorf("subjects: unknown semester %q", raw)
}

// Subject is a course offering. Its membership set drives every relational
// authorization predicate in the system.
type Subject struct {
	ID        shared.ID `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Semester  Semester  `json:"semester"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is one entry of a subject's membership set.
type Member struct {
	UserID  shared.ID   `json:"user_id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Role    shared.Role `json:"role"`
	AddedAt time.Time   `json:"added_at"`
}
