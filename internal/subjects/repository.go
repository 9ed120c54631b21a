package subjects

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

// Repository defines persistence operations for subjects and their
// membership sets.
type Repository interface {
	Get(ctx context.Context, id shared.ID) (Subject, error)
	List(ctx context.Context, scope policy.ListScope) ([]Subject, error)
	Create(ctx context.Context, s Subject) (Subject, error)
	Update(ctx context.Context, id shared.ID, name string, year int, semester Semester) error
	Delete(ctx context.Context, id shared.ID) error

	Members(ctx context.Context, subjectID shared.ID) ([]Member, error)
	AddMember(ctx context.Context, subjectID, userID shared.ID) error
	RemoveMember(ctx context.Context, subjectID, userID shared.ID) error

	// Policy lookups.
	Exists(ctx context.Context, subjectID shared.ID) (bool, error)
	IsMember(ctx context.Context, subjectID, userID shared.ID) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Get fetches one subject.
func (r *PGRepository) Get(ctx context.Context, id shared.ID) (Subject, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, year, semester, created_at, updated_at FROM subjects WHERE id = $1`,
		id.String())
	s, err := scanSubject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subject{}, fmt.Errorf("%w: subject %s", httpx.ErrNotFound, id)
		}
		return Subject{}, err
	}
	return s, nil
}

// List returns subjects visible in the scope: all of them for admins, only
// the actor's memberships otherwise. The narrowing is a query filter, not a
// rejection.
func (r *PGRepository) List(ctx context.Context, scope policy.ListScope) ([]Subject, error) {
	query := `SELECT id, name, year, semester, created_at, updated_at FROM subjects`
	args := []any{}
	if !scope.All {
		query += ` WHERE id IN (SELECT subject_id FROM subject_members WHERE user_id = $1)`
		args = append(args, scope.UserID.String())
	}
	query += ` ORDER BY year DESC, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []Subject{}
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Create inserts a new subject.
func (r *PGRepository) Create(ctx context.Context, s Subject) (Subject, error) {
	now := time.Now().UTC()
	s.ID = shared.NewID()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.pool.Exec(ctx,
		`INSERT INTO subjects (id, name, year, semester, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID.String(), s.Name, s.Year, string(s.Semester),
		pgtype.Timestamptz{Time: now, Valid: true},
		pgtype.Timestamptz{Time: now, Valid: true},
	)
	if err != nil {
		return Subject{}, err
	}
	return s, nil
}

// Update rewrites a subject's attributes.
func (r *PGRepository) Update(ctx context.Context, id shared.ID, name string, year int, semester Semester) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subjects SET name = $2, year = $3, semester = $4, updated_at = now() WHERE id = $1`,
		id.String(), name, year, string(semester))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: subject %s", httpx.ErrNotFound, id)
	}
	return nil
}

// Delete removes a subject and, via cascade, its memberships and assessments.
func (r *PGRepository) Delete(ctx context.Context, id shared.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: subject %s", httpx.ErrNotFound, id)
	}
	return nil
}

// Members returns the subject's membership set in insertion order.
func (r *PGRepository) Members(ctx context.Context, subjectID shared.ID) ([]Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.user_id, u.name, u.email, u.role, m.added_at
		 FROM subject_members m JOIN users u ON u.id = m.user_id
		 WHERE m.subject_id = $1 ORDER BY m.added_at`,
		subjectID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var (
			m        Member
			id, role string
			added    pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &m.Name, &m.Email, &role, &added); err != nil {
			return nil, err
		}
		m.UserID = shared.ID(id)
		m.Role = shared.Role(role)
		if added.Valid {
			m.AddedAt = added.Time
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddMember enrolls a principal in the subject.
func (r *PGRepository) AddMember(ctx context.Context, subjectID, userID shared.ID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subject_members (subject_id, user_id) VALUES ($1, $2)`,
		subjectID.String(), userID.String())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return fmt.Errorf("%w: membership", httpx.ErrDuplicate)
			case "23503":
				return fmt.Errorf("%w: subject or user", httpx.ErrNotFound)
			}
		}
		return err
	}
	return nil
}

// RemoveMember drops a principal from the subject.
func (r *PGRepository) RemoveMember(ctx context.Context, subjectID, userID shared.ID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM subject_members WHERE subject_id = $1 AND user_id = $2`,
		subjectID.String(), userID.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: membership", httpx.ErrNotFound)
	}
	return nil
}

// Exists reports whether the subject is present.
func (r *PGRepository) Exists(ctx context.Context, subjectID shared.ID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subjects WHERE id = $1)`, subjectID.String()).Scan(&exists)
	return exists, err
}

// IsMember reports whether the principal belongs to the subject's membership
// set.
func (r *PGRepository) IsMember(ctx context.Context, subjectID, userID shared.ID) (bool, error) {
	var member bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subject_members WHERE subject_id = $1 AND user_id = $2)`,
		subjectID.String(), userID.String()).Scan(&member)
	return member, err
}

func scanSubject(row interface{ Scan(dest ...any) error }) (Subject, error) {
	var (
		s            Subject
		id, semester string
		created      pgtype.Timestamptz
		updated      pgtype.Timestamptz
	)
	if err := row.Scan(&id, &s.Name, &s.Year, &semester, &created, &updated); err != nil {
		return Subject{}, err
	}
	s.ID = shared.ID(id)
	s.Semester = Semester(semester)
	if created.Valid {
		s.CreatedAt = created.Time
	}
	if updated.Valid {
		s.UpdatedAt = updated.Time
	}
	return s, nil
}

var (
	_ Repository           = (*PGRepository)(nil)
	_ policy.SubjectLookup = (*PGRepository)(nil)
)
