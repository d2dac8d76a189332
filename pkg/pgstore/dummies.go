package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tendant/simple-acm/pkg/domain"
)

// dummyRepository implements domain.DummyRepository.
type dummyRepository struct {
	uow *unitOfWork
}

const dummyColumns = `id, name, cursor, date_created, date_modified, date_deleted`

func scanDummy(row pgx.Row) (*domain.Dummy, error) {
	var d domain.Dummy
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Cursor,
		&d.DateCreated,
		&d.DateModified,
		&d.DateDeleted,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dummyRepository) GetByID(ctx context.Context, id string) (*domain.Dummy, error) {
	query := `SELECT ` + dummyColumns + ` FROM dummies WHERE id = $1 AND date_deleted IS NULL`

	dummy, err := scanDummy(r.uow.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dummy: %w", err)
	}
	return dummy, nil
}

func (r *dummyRepository) GetDummies(ctx context.Context, filter domain.DummyFilter) ([]*domain.Dummy, error) {
	q := collectionQuery{sql: `SELECT ` + dummyColumns + ` FROM dummies WHERE date_deleted IS NULL`}
	q.contains("name", filter.Name)
	q.timestamps(filter.Timestamps)
	q.page(filter.Page)

	rows, err := r.uow.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dummies: %w", err)
	}
	defer rows.Close()

	var dummies []*domain.Dummy
	for rows.Next() {
		dummy, err := scanDummy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dummy: %w", err)
		}
		dummies = append(dummies, dummy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list dummies: %w", err)
	}
	return dummies, nil
}

func (r *dummyRepository) Create(ctx context.Context, dummy *domain.Dummy) (*domain.Dummy, error) {
	d := *dummy
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			INSERT INTO dummies (id, name, cursor, date_created, date_modified, date_deleted)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.Exec(ctx, query, d.ID, d.Name, d.Cursor, d.DateCreated, d.DateModified, d.DateDeleted)
		if err != nil {
			return fmt.Errorf("failed to insert dummy %s: %w", d.ID, err)
		}
		return nil
	})
	return dummy, nil
}

func (r *dummyRepository) Update(ctx context.Context, dummy *domain.Dummy) (*domain.Dummy, error) {
	d := *dummy
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		const query = `
			UPDATE dummies
			SET name = $2, cursor = $3, date_modified = $4, date_deleted = $5
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query, d.ID, d.Name, d.Cursor, d.DateModified, d.DateDeleted)
		if err != nil {
			return fmt.Errorf("failed to update dummy %s: %w", d.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("dummy %s does not exist", d.ID)
		}
		return nil
	})
	return dummy, nil
}

func (r *dummyRepository) Delete(ctx context.Context, dummy *domain.Dummy) (*domain.Dummy, error) {
	id := dummy.ID
	r.uow.register(func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM dummies WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete dummy %s: %w", id, err)
		}
		return nil
	})
	return dummy, nil
}
