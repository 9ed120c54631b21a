package assessments

import (
	"time"

	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Assessment is a graded piece of work scoped under a subject.
type Assessment struct {
	ID        shared.ID  `json:"id"`
	SubjectID shared.ID  `json:"subject_id"`
	Title     string     `json:"title"`
	// Questions holds the assessment body. Hidden from students.
	Questions string `json:"questions,omitempty"`
	// Marks is the total attainable mark. Hidden from students.
	Marks     int        `json:"marks,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Redacted returns the student view: questions and marks cleared, everything
// else intact.
func (a Assessment) Redacted() Assessment {
	a.Questions = ""
	a.Marks = 0
	return a
}
