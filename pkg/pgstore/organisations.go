package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tendant/simple-acm/pkg/domain"
)

// organisationRepository implements domain.OrganisationRepository. The
// membership collection lives in organisation_users and is rewritten
// wholesale whenever the organisation is updated.
type organisationRepository struct {
	uow *unitOfWork
}

const organisationColumns = `id, name, cursor, date_created, date_modified, date_deleted, date_last_synchronised`

func scanOrganisation(row pgx.Row) (*domain.Organisation, error) {
	var o domain.Organisation
	err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Cursor,
		&o.DateCreated,
		&o.DateModified,
		&o.DateDeleted,
		&o.DateLastSynchronised,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *organisationRepository) GetByID(ctx context.Context, id string) (*domain.Organisation, error) {
	query := `SELECT ` + organisationColumns + ` FROM organisations WHERE id = $1 AND date_deleted IS NULL`

	organisation, err := scanOrganisation(r.uow.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organisation: %w", err)
	}

	if err := r.loadMembers(ctx, []*domain.Organisation{organisation}); err != nil {
		return nil, err
	}
	return organisation, nil
}

func (r *organisationRepository) GetOrganisations(ctx context.Context, filter domain.OrganisationFilter) ([]*domain.Organisation, error) {
	q := collectionQuery{sql: `SELECT ` + organisationColumns + ` FROM organisations WHERE date_deleted IS NULL`}
	q.contains("name", filter.Name)
	q.timestamps(filter.Timestamps)
	q.page(filter.Page)

	rows, err := r.uow.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organisations: %w", err)
	}
	defer rows.Close()

	var organisations []*domain.Organisation
	for rows.Next() {
		organisation, err := scanOrganisation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organisation: %w", err)
		}
		organisations = append(organisations, organisation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list organisations: %w", err)
	}

	if err := r.loadMembers(ctx, organisations); err != nil {
		return nil, err
	}
	return organisations, nil
}

func (r *organisationRepository) loadMembers(ctx context.Context, organisations []*domain.Organisation) error {
	if len(organisations) == 0 {
		return nil
	}

	ids := make([]string, len(organisations))
	byID := make(map[string]*domain.Organisation, len(organisations))
	for i, o := range organisations {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	const query = `
		SELECT organisation_id, user_id, date_created
		FROM organisation_users
		WHERE organisation_id = ANY($1)
		ORDER BY date_created ASC
	`
	rows, err := r.uow.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load organisation members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.OrganisationUser
		if err := rows.Scan(&m.OrganisationID, &m.UserID, &m.DateCreated); err != nil {
			return fmt.Errorf("failed to scan organisation member: %w", err)
		}
		o := byID[m.OrganisationID]
		o.Users = append(o.Users, m)
	}
	return rows.Err()
}

func (r *organisationRepository) Create(ctx context.Context, organisation *domain.Organisation) (*domain.Organisation, error) {
	o := *organisation
	o.Users = append([]domain.OrganisationUser(nil), organisation.Users...)
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			INSERT INTO organisations (id, name, cursor, date_created, date_modified, date_deleted, date_last_synchronised)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.Exec(ctx, query, o.ID, o.Name, o.Cursor, o.DateCreated, o.DateModified, o.DateDeleted, o.DateLastSynchronised)
		if err != nil {
			return fmt.Errorf("failed to insert organisation %s: %w", o.ID, err)
		}
		return insertOrganisationMembers(ctx, tx, o.Users)
	})
	return organisation, nil
}

func (r *organisationRepository) Update(ctx context.Context, organisation *domain.Organisation) (*domain.Organisation, error) {
	o := *organisation
	o.Users = append([]domain.OrganisationUser(nil), organisation.Users...)
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			UPDATE organisations
			SET name = $2, cursor = $3, date_modified = $4, date_deleted = $5, date_last_synchronised = $6
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query, o.ID, o.Name, o.Cursor, o.DateModified, o.DateDeleted, o.DateLastSynchronised)
		if err != nil {
			return fmt.Errorf("failed to update organisation %s: %w", o.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("organisation %s does not exist", o.ID)
		}

		// Rewrite the membership rows to match the aggregate's collection.
		if _, err := tx.Exec(ctx, `DELETE FROM organisation_users WHERE organisation_id = $1`, o.ID); err != nil {
			return fmt.Errorf("failed to clear organisation members: %w", err)
		}
		return insertOrganisationMembers(ctx, tx, o.Users)
	})
	return organisation, nil
}

func (r *organisationRepository) Delete(ctx context.Context, organisation *domain.Organisation) (*domain.Organisation, error) {
	id := organisation.ID
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM organisations WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete organisation %s: %w", id, err)
		}
		return nil
	})
	return organisation, nil
}

func insertOrganisationMembers(ctx context.Context, tx pgx.Tx, members []domain.OrganisationUser) error {
	const query = `
		INSERT INTO organisation_users (organisation_id, user_id, date_created)
		VALUES ($1, $2, $3)
	`
	for _, m := range members {
		if _, err := tx.Exec(ctx, query, m.OrganisationID, m.UserID, m.DateCreated); err != nil {
			return fmt.Errorf("failed to insert organisation member %s/%s: %w", m.OrganisationID, m.UserID, err)
		}
	}
	return nil
}

// organisationUserRepository resolves membership records for cross-aggregate
// checks. Read-only; membership writes flow through the organisation.
type organisationUserRepository struct {
	uow *unitOfWork
}

func (r *organisationUserRepository) GetRelationship(ctx context.Context, organisationID, userID string) (*domain.OrganisationUser, error) {
	const query = `
		SELECT ou.organisation_id, ou.user_id, ou.date_created
		FROM organisation_users ou
		JOIN organisations o ON o.id = ou.organisation_id
		WHERE ou.organisation_id = $1 AND ou.user_id = $2 AND o.date_deleted IS NULL
	`

	var m domain.OrganisationUser
	err := r.uow.pool.QueryRow(ctx, query, organisationID, userID).Scan(&m.OrganisationID, &m.UserID, &m.DateCreated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organisation membership: %w", err)
	}
	return &m, nil
}
