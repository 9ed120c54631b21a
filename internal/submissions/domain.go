package submissions

import (
	"time"

	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Submission is a student's submitted work for an assessment. It carries no
// membership of its own: authorization always walks Submission -> Assessment
// -> Subject.
type Submission struct {
	ID           shared.ID  `json:"id"`
	AssessmentID shared.ID  `json:"assessment_id"`
	StudentID    shared.ID  `json:"student_id"`
	// Repo is the URL of the repository holding the submitted work.
	Repo      string     `json:"repo"`
	Note      string     `json:"note,omitempty"`
	Grade     *int       `json:"grade,omitempty"`
	GradedBy  *shared.ID `json:"graded_by,omitempty"`
	GradedAt  *time.Time `json:"graded_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
