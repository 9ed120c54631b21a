package assessments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Repository defines persistence operations for assessments.
type Repository interface {
	Get(ctx context.Context, id shared.ID) (Assessment, error)
	ListBySubject(ctx context.Context, subjectID shared.ID) ([]Assessment, error)
	Create(ctx context.Context, a Assessment) (Assessment, error)
	Update(ctx context.Context, id shared.ID, title, questions string, marks int, dueAt *time.Time) error
	Delete(ctx context.Context, id shared.ID) error

	// ParentSubject is the policy lookup for the parent chain.
	ParentSubject(ctx context.Context, assessmentID shared.ID) (shared.ID, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const assessmentColumns = `id, subject_id, title, questions, marks, due_at, created_at, updated_at`

// Get fetches one assessment.
func (r *PGRepository) Get(ctx context.Context, id shared.ID) (Assessment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id.String())
	a, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assessment{}, fmt.Errorf("%w: assessment %s", httpx.ErrNotFound, id)
		}
		return Assessment{}, err
	}
	return a, nil
}

// ListBySubject returns a subject's assessments, newest first.
func (r *PGRepository) ListBySubject(ctx context.Context, subjectID shared.ID) ([]Assessment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE subject_id = $1 ORDER BY created_at DESC`,
		subjectID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assessments := []Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

// Create inserts a new assessment.
func (r *PGRepository) Create(ctx context.Context, a Assessment) (Assessment, error) {
	now := time.Now().UTC()
	a.ID = shared.NewID()
	a.CreatedAt = now
	a.UpdatedAt = now

	var dueAt pgtype.Timestamptz
	if a.DueAt != nil {
		dueAt = pgtype.Timestamptz{Time: a.DueAt.UTC(), Valid: true}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO assessments (id, subject_id, title, questions, marks, due_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID.String(), a.SubjectID.String(), a.Title, a.Questions, a.Marks, dueAt,
		pgtype.Timestamptz{Time: now, Valid: true},
		pgtype.Timestamptz{Time: now, Valid: true},
	)
	if err != nil {
		return Assessment{}, err
	}
	return a, nil
}

// Update rewrites an assessment's attributes.
func (r *PGRepository) Update(ctx context.Context, id shared.ID, title, questions string, marks int, dueAt *time.Time) error {
	var due pgtype.Timestamptz
	if dueAt != nil {
		due = pgtype.Timestamptz{Time: dueAt.UTC(), Valid: true}
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE assessments SET title = $2, questions = $3, marks = $4, due_at = $5, updated_at = now()
		 WHERE id = $1`,
		id.String(), title, questions, marks, due)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: assessment %s", httpx.ErrNotFound, id)
	}
	return nil
}

// Delete removes an assessment and, via cascade, its submissions.
func (r *PGRepository) Delete(ctx context.Context, id shared.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: assessment %s", httpx.ErrNotFound, id)
	}
	return nil
}

// ParentSubject resolves the assessment's parent subject for the policy
// chain. A missing assessment is an integrity error, reported as not found.
func (r *PGRepository) ParentSubject(ctx context.Context, assessmentID shared.ID) (shared.ID, error) {
	var raw string
	err := r.pool.QueryRow(ctx,
		`SELECT subject_id FROM assessments WHERE id = $1`, assessmentID.String()).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: assessment %s", httpx.ErrNotFound, assessmentID)
		}
		return "", err
	}
	return shared.ID(raw), nil
}

func scanAssessment(row interface{ Scan(dest ...any) error }) (Assessment, error) {
	var (
		a           Assessment
		id, subject string
		due         pgtype.Timestamptz
		created     pgtype.Timestamptz
		updated     pgtype.Timestamptz
	)
	if err := row.Scan(&id, &subject, &a.Title, &a.Questions, &a.Marks, &due, &created, &updated); err != nil {
		return Assessment{}, err
	}
	a.ID = shared.ID(id)
	a.SubjectID = shared.ID(subject)
	if due.Valid {
		t := due.Time
		a.DueAt = &t
	}
	if created.Valid {
		a.CreatedAt = created.Time
	}
	if updated.Valid {
		a.UpdatedAt = updated.Time
	}
	return a, nil
}

var (
	_ Repository              = (*PGRepository)(nil)
	_ policy.AssessmentLookup = (*PGRepository)(nil)
)
