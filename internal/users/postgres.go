package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach.
const uniqueViolation = "23505"

// postgresRepository implements Repository on PostgreSQL.
type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a Repository backed by the given database.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a user and returns the stored record.
func (r *postgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, first_name, last_name, is_active, created_at, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// GetByID fetches a user by primary key.
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, is_active, created_at, updated_at
		FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user by id: %w", err)
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, is_active, created_at, updated_at
		FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return user, nil
}

// Update applies the non-nil fields of input and returns the updated record.
func (r *postgresRepository) Update(ctx context.Context, id int64, input UpdateInput) (*User, error) {
	assignments := []string{"updated_at = now()"}
	args := []any{id}

	addAssignment := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if input.FirstName != nil {
		addAssignment("first_name", *input.FirstName)
	}
	if input.LastName != nil {
		addAssignment("last_name", *input.LastName)
	}
	if input.Active != nil {
		addAssignment("is_active", *input.Active)
	}

	query := fmt.Sprintf(`
		UPDATE users SET %s WHERE id = $1
		RETURNING id, email, password_hash, first_name, last_name, is_active, created_at, updated_at`,
		strings.Join(assignments, ", "))

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes a user by primary key.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		user      User
		firstName sql.NullString
		lastName  sql.NullString
	)

	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&firstName, &lastName, &user.Active,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.FirstName = firstName.String
	user.LastName = lastName.String
	return &user, nil
}
