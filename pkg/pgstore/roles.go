package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tendant/simple-acm/pkg/domain"
)

// roleRepository implements domain.RoleRepository. Membership rows live in
// role_users and are rewritten wholesale on update.
type roleRepository struct {
	uow *unitOfWork
}

const roleColumns = `id, name, description, cursor, date_created, date_modified, date_deleted`

func scanRole(row pgx.Row) (*domain.Role, error) {
	var role domain.Role
	err := row.Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.Cursor,
		&role.DateCreated,
		&role.DateModified,
		&role.DateDeleted,
	)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1 AND date_deleted IS NULL`

	role, err := scanRole(r.uow.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	if err := r.loadMembers(ctx, []*domain.Role{role}); err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleRepository) GetRoles(ctx context.Context, filter domain.RoleFilter) ([]*domain.Role, error) {
	q := collectionQuery{sql: `SELECT ` + roleColumns + ` FROM roles WHERE date_deleted IS NULL`}
	if filter.UserID != nil {
		q.where("id IN (SELECT role_id FROM role_users WHERE user_id = $%d)", *filter.UserID)
	}
	q.contains("name", filter.Name)
	q.contains("description", filter.Description)
	q.timestamps(filter.Timestamps)
	q.page(filter.Page)

	rows, err := r.uow.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	if err := r.loadMembers(ctx, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) loadMembers(ctx context.Context, roles []*domain.Role) error {
	if len(roles) == 0 {
		return nil
	}

	ids := make([]string, len(roles))
	byID := make(map[string]*domain.Role, len(roles))
	for i, role := range roles {
		ids[i] = role.ID
		byID[role.ID] = role
	}

	const query = `
		SELECT role_id, user_id, date_created
		FROM role_users
		WHERE role_id = ANY($1)
		ORDER BY date_created ASC
	`
	rows, err := r.uow.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load role members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.RoleUser
		if err := rows.Scan(&m.RoleID, &m.UserID, &m.DateCreated); err != nil {
			return fmt.Errorf("failed to scan role member: %w", err)
		}
		role := byID[m.RoleID]
		role.Users = append(role.Users, m)
	}
	return rows.Err()
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	c := *role
	c.Users = append([]domain.RoleUser(nil), role.Users...)
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			INSERT INTO roles (id, name, description, cursor, date_created, date_modified, date_deleted)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.Exec(ctx, query, c.ID, c.Name, c.Description, c.Cursor, c.DateCreated, c.DateModified, c.DateDeleted)
		if err != nil {
			return fmt.Errorf("failed to insert role %s: %w", c.ID, err)
		}
		return insertRoleMembers(ctx, tx, c.Users)
	})
	return role, nil
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	c := *role
	c.Users = append([]domain.RoleUser(nil), role.Users...)
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			UPDATE roles
			SET name = $2, description = $3, cursor = $4, date_modified = $5, date_deleted = $6
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query, c.ID, c.Name, c.Description, c.Cursor, c.DateModified, c.DateDeleted)
		if err != nil {
			return fmt.Errorf("failed to update role %s: %w", c.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("role %s does not exist", c.ID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM role_users WHERE role_id = $1`, c.ID); err != nil {
			return fmt.Errorf("failed to clear role members: %w", err)
		}
		return insertRoleMembers(ctx, tx, c.Users)
	})
	return role, nil
}

func (r *roleRepository) Delete(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	id := role.ID
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete role %s: %w", id, err)
		}
		return nil
	})
	return role, nil
}

func insertRoleMembers(ctx context.Context, tx pgx.Tx, members []domain.RoleUser) error {
	const query = `
		INSERT INTO role_users (role_id, user_id, date_created)
		VALUES ($1, $2, $3)
	`
	for _, m := range members {
		if _, err := tx.Exec(ctx, query, m.RoleID, m.UserID, m.DateCreated); err != nil {
			return fmt.Errorf("failed to insert role member %s/%s: %w", m.RoleID, m.UserID, err)
		}
	}
	return nil
}
