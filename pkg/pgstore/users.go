package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tendant/simple-acm/pkg/domain"
)

// userRepository implements domain.UserRepository with hand-written SQL.
type userRepository struct {
	uow *unitOfWork
}

const userColumns = `id, name, email, cursor, date_created, date_modified, date_deleted, date_last_synchronised`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Cursor,
		&u.DateCreated,
		&u.DateModified,
		&u.DateDeleted,
		&u.DateLastSynchronised,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND date_deleted IS NULL`

	user, err := scanUser(r.uow.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetUsers(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	q := collectionQuery{sql: `SELECT ` + userColumns + ` FROM users WHERE date_deleted IS NULL`}
	q.contains("name", filter.Name)
	q.contains("email", filter.Email)
	q.timestamps(filter.Timestamps)
	q.page(filter.Page)

	rows, err := r.uow.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	u := *user
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			INSERT INTO users (id, name, email, cursor, date_created, date_modified, date_deleted, date_last_synchronised)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.Exec(ctx, query, u.ID, u.Name, u.Email, u.Cursor, u.DateCreated, u.DateModified, u.DateDeleted, u.DateLastSynchronised)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
		}
		return nil
	})
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	u := *user
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			UPDATE users
			SET name = $2, email = $3, cursor = $4, date_modified = $5, date_deleted = $6, date_last_synchronised = $7
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query, u.ID, u.Name, u.Email, u.Cursor, u.DateModified, u.DateDeleted, u.DateLastSynchronised)
		if err != nil {
			return fmt.Errorf("failed to update user %s: %w", u.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("user %s does not exist", u.ID)
		}
		return nil
	})
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, user *domain.User) (*domain.User, error) {
	id := user.ID
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete user %s: %w", id, err)
		}
		return nil
	})
	return user, nil
}
