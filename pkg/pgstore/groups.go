package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tendant/simple-acm/pkg/domain"
)

// groupRepository implements domain.GroupRepository. Membership rows live
// in group_users and are rewritten wholesale on update.
type groupRepository struct {
	uow *unitOfWork
}

const groupColumns = `id, name, description, organisation_id, cursor, date_created, date_modified, date_deleted`

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var g domain.Group
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.OrganisationID,
		&g.Cursor,
		&g.DateCreated,
		&g.DateModified,
		&g.DateDeleted,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM "groups" WHERE id = $1 AND date_deleted IS NULL`

	group, err := scanGroup(r.uow.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if err := r.loadMembers(ctx, []*domain.Group{group}); err != nil {
		return nil, err
	}
	return group, nil
}

func (r *groupRepository) GetGroups(ctx context.Context, filter domain.GroupFilter) ([]*domain.Group, error) {
	q := collectionQuery{sql: `SELECT ` + groupColumns + ` FROM "groups" WHERE date_deleted IS NULL`}
	if filter.OrganisationID != nil {
		q.where("organisation_id = $%d", *filter.OrganisationID)
	}
	q.contains("name", filter.Name)
	q.timestamps(filter.Timestamps)
	q.page(filter.Page)

	rows, err := r.uow.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	if err := r.loadMembers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) loadMembers(ctx context.Context, groups []*domain.Group) error {
	if len(groups) == 0 {
		return nil
	}

	ids := make([]string, len(groups))
	byID := make(map[string]*domain.Group, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
		byID[g.ID] = g
	}

	const query = `
		SELECT group_id, user_id, date_created
		FROM group_users
		WHERE group_id = ANY($1)
		ORDER BY date_created ASC
	`
	rows, err := r.uow.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.GroupUser
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.DateCreated); err != nil {
			return fmt.Errorf("failed to scan group member: %w", err)
		}
		g := byID[m.GroupID]
		g.Users = append(g.Users, m)
	}
	return rows.Err()
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	g := *group
	g.Users = append([]domain.GroupUser(nil), group.Users...)
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			INSERT INTO "groups" (id, name, description, organisation_id, cursor, date_created, date_modified, date_deleted)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.Exec(ctx, query, g.ID, g.Name, g.Description, g.OrganisationID, g.Cursor, g.DateCreated, g.DateModified, g.DateDeleted)
		if err != nil {
			return fmt.Errorf("failed to insert group %s: %w", g.ID, err)
		}
		return insertGroupMembers(ctx, tx, g.Users)
	})
	return group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	g := *group
	g.Users = append([]domain.GroupUser(nil), group.Users...)
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			UPDATE "groups"
			SET name = $2, description = $3, cursor = $4, date_modified = $5, date_deleted = $6
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query, g.ID, g.Name, g.Description, g.Cursor, g.DateModified, g.DateDeleted)
		if err != nil {
			return fmt.Errorf("failed to update group %s: %w", g.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("group %s does not exist", g.ID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM group_users WHERE group_id = $1`, g.ID); err != nil {
			return fmt.Errorf("failed to clear group members: %w", err)
		}
		return insertGroupMembers(ctx, tx, g.Users)
	})
	return group, nil
}

func (r *groupRepository) Delete(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	id := group.ID
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM "groups" WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete group %s: %w", id, err)
		}
		return nil
	})
	return group, nil
}

func insertGroupMembers(ctx context.Context, tx pgx.Tx, members []domain.GroupUser) error {
	const query = `
		INSERT INTO group_users (group_id, user_id, date_created)
		VALUES ($1, $2, $3)
	`
	for _, m := range members {
		if _, err := tx.Exec(ctx, query, m.GroupID, m.UserID, m.DateCreated); err != nil {
			return fmt.Errorf("failed to insert group member %s/%s: %w", m.GroupID, m.UserID, err)
		}
	}
	return nil
}
