package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Repository defines persistence operations for submissions.
type Repository interface {
	Get(ctx context.Context, id shared.ID) (Submission, error)
	ListByAssessment(ctx context.Context, assessmentID shared.ID, scope policy.ListScope) ([]Submission, error)
	Create(ctx context.Context, s Submission) (Submission, error)
	Update(ctx context.Context, id shared.ID, repo, note string) error
	Delete(ctx context.Context, id shared.ID) error
	Grade(ctx context.Context, id shared.ID, grade int, gradedBy shared.ID, gradedAt time.Time) error

	// Provenance is the policy lookup for the parent chain.
	Provenance(ctx context.Context, submissionID shared.ID) (owner, assessment shared.ID, err error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const submissionColumns = `id, assessment_id, student_id, repo, note, grade, graded_by, graded_at, created_at, updated_at`

// Get fetches one submission.
func (r *PGRepository) Get(ctx context.Context, id shared.ID) (Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id.String())
	s, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Submission{}, fmt.Errorf("%w: submission %s", httpx.ErrNotFound, id)
		}
		return Submission{}, err
	}
	return s, nil
}

// ListByAssessment returns an assessment's submissions, narrowed to the
// scope: students see only their own rows.
func (r *PGRepository) ListByAssessment(ctx context.Context, assessmentID shared.ID, scope policy.ListScope) ([]Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE assessment_id = $1`
	args := []any{assessmentID.String()}
	if !scope.All {
		query += ` AND student_id = $2`
		args = append(args, scope.UserID.String())
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// Create inserts a new submission. One submission per student and
// assessment.
func (r *PGRepository) Create(ctx context.Context, s Submission) (Submission, error) {
	now := time.Now().UTC()
	s.ID = shared.NewID()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.pool.Exec(ctx,
		`INSERT INTO submissions (id, assessment_id, student_id, repo, note, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID.String(), s.AssessmentID.String(), s.StudentID.String(), s.Repo, s.Note,
		pgtype.Timestamptz{Time: now, Valid: true},
		pgtype.Timestamptz{Time: now, Valid: true},
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Submission{}, fmt.Errorf("%w: already submitted", httpx.ErrDuplicate)
			case "23503":
				return Submission{}, fmt.Errorf("%w: assessment or student", httpx.ErrNotFound)
			}
		}
		return Submission{}, err
	}
	return s, nil
}

// Update rewrites the owner-mutable fields.
func (r *PGRepository) Update(ctx context.Context, id shared.ID, repo, note string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE submissions SET repo = $2, note = $3, updated_at = now() WHERE id = $1`,
		id.String(), repo, note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: submission %s", httpx.ErrNotFound, id)
	}
	return nil
}

// Delete removes a submission.
func (r *PGRepository) Delete(ctx context.Context, id shared.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: submission %s", httpx.ErrNotFound, id)
	}
	return nil
}

// Grade records a grade with its provenance.
func (r *PGRepository) Grade(ctx context.Context, id shared.ID, grade int, gradedBy shared.ID, gradedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE submissions SET grade = $2, graded_by = $3, graded_at = $4, updated_at = now()
		 WHERE id = $1`,
		id.String(), grade, gradedBy.String(),
		pgtype.Timestamptz{Time: gradedAt.UTC(), Valid: true})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: submission %s", httpx.ErrNotFound, id)
	}
	return nil
}

// Provenance resolves a submission to its owner and parent assessment for
// the policy chain.
func (r *PGRepository) Provenance(ctx context.Context, submissionID shared.ID) (shared.ID, shared.ID, error) {
	var owner, assessment string
	err := r.pool.QueryRow(ctx,
		`SELECT student_id, assessment_id FROM submissions WHERE id = $1`,
		submissionID.String()).Scan(&owner, &assessment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", fmt.Errorf("%w: submission %s", httpx.ErrNotFound, submissionID)
		}
		return "", "", err
	}
	return shared.ID(owner), shared.ID(assessment), nil
}

func scanSubmission(row interface{ Scan(dest ...any) error }) (Submission, error) {
	var (
		s                       Submission
		id, assessment, student string
		grade                   pgtype.Int4
		gradedBy                pgtype.Text
		gradedAt                pgtype.Timestamptz
		created                 pgtype.Timestamptz
		updated                 pgtype.Timestamptz
	)
	if err := row.Scan(&id, &assessment, &student, &s.Repo, &s.Note, &grade, &gradedBy, &gradedAt, &created, &updated); err != nil {
		return Submission{}, err
	}
	s.ID = shared.ID(id)
	s.AssessmentID = shared.ID(assessment)
	s.StudentID = shared.ID(student)
	if grade.Valid {
		g := int(grade.Int32)
		s.Grade = &g
	}
	if gradedBy.Valid {
		by := shared.ID(gradedBy.String)
		s.GradedBy = &by
	}
	if gradedAt.Valid {
		t := gradedAt.Time
		s.GradedAt = &t
	}
	if created.Valid {
		s.CreatedAt = created.Time
	}
	if updated.Valid {
		s.UpdatedAt = updated.Time
	}
	return s, nil
}

var (
	_ Repository              = (*PGRepository)(nil)
	_ policy.SubmissionLookup = (*PGRepository)(nil)
)
