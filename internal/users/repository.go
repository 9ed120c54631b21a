package users

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
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Repository defines persistence operations for the user directory.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (Principal, error)
	FindByID(ctx context.Context, id shared.ID) (Principal, error)
	Create(ctx context.Context, p Principal) (Principal, error)
	Update(ctx context.Context, id shared.ID, name, email, campusID string) error
	Delete(ctx context.Context, id shared.ID) error
	List(ctx context.Context, role shared.Role) ([]Principal, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const principalColumns = `id, name, email, COALESCE(campus_id, ''), role, COALESCE(password_hash, ''), created_at, updated_at`

// FindByEmail fetches a principal by unique email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (Principal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM users WHERE email = $1`, email)
	return r.scanPrincipal(ctx, row)
}

// FindByID fetches a principal by id.
func (r *PGRepository) FindByID(ctx context.Context, id shared.ID) (Principal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM users WHERE id = $1`, id.String())
	return r.scanPrincipal(ctx, row)
}

// Create inserts a new principal. A duplicate email maps to ErrDuplicate.
func (r *PGRepository) Create(ctx context.Context, p Principal) (Principal, error) {
	now := time.Now().UTC()
	p.ID = shared.NewID()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, campus_id, role, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`,
		p.ID.String(), p.Name, p.Email, p.CampusID, string(p.Role), p.PasswordHash,
		pgtype.Timestamptz{Time: now, Valid: true},
		pgtype.Timestamptz{Time: now, Valid: true},
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Principal{}, fmt.Errorf("%w: email %s", httpx.ErrDuplicate, p.Email)
		}
		return Principal{}, err
	}
	p.SubjectIDs = []shared.ID{}
	return p, nil
}

// Update rewrites the mutable fields. Role is immutable after creation and
// deliberately absent here.
func (r *PGRepository) Update(ctx context.Context, id shared.ID, name, email, campusID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, campus_id = NULLIF($4, ''), updated_at = now()
		 WHERE id = $1`,
		id.String(), name, email, campusID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %s", httpx.ErrDuplicate, email)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", httpx.ErrNotFound, id)
	}
	return nil
}

// Delete removes a principal.
func (r *PGRepository) Delete(ctx context.Context, id shared.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", httpx.ErrNotFound, id)
	}
	return nil
}

// List returns all principals holding the given role.
func (r *PGRepository) List(ctx context.Context, role shared.Role) ([]Principal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+principalColumns+` FROM users WHERE role = $1 ORDER BY name`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	principals := []Principal{}
	for rows.Next() {
		p, err := scanPrincipalRow(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range principals {
		ids, err := r.subjectIDs(ctx, principals[i].ID)
		if err != nil {
			return nil, err
		}
		principals[i].SubjectIDs = ids
	}
	return principals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepository) scanPrincipal(ctx context.Context, row rowScanner) (Principal, error) {
	p, err := scanPrincipalRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Principal{}, httpx.ErrNotFound
		}
		return Principal{}, err
	}
	p.SubjectIDs, err = r.subjectIDs(ctx, p.ID)
	if err != nil {
		return Principal{}, err
	}
	return p, nil
}

func scanPrincipalRow(row rowScanner) (Principal, error) {
	var (
		p        Principal
		id, role string
		created  pgtype.Timestamptz
		updated  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &p.Name, &p.Email, &p.CampusID, &role, &p.PasswordHash, &created, &updated); err != nil {
		return Principal{}, err
	}
	p.ID = shared.ID(id)
	p.Role = shared.Role(role)
	if created.Valid {
		p.CreatedAt = created.Time
	}
	if updated.Valid {
		p.UpdatedAt = updated.Time
	}
	return p, nil
}

// subjectIDs loads the ordered membership set for a principal.
func (r *PGRepository) subjectIDs(ctx context.Context, id shared.ID) ([]shared.ID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT subject_id FROM subject_members WHERE user_id = $1 ORDER BY added_at`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []shared.ID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		ids = append(ids, shared.ID(raw))
	}
	return ids, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
