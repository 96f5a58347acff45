package storerepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gofulfil/internal/domain"
	"gofulfil/internal/errors"
	"gofulfil/internal/pkg/database"
	"gofulfil/internal/pkg/logger"
)

// StoreRepository persists retail stores.
type StoreRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStoreRepository creates and returns a new store repository.
func NewStoreRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *StoreRepository {
	return &StoreRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save persists a new store, assigning its id and timestamps.
func (r *StoreRepository) Save(ctx context.Context, store domain.Store) (domain.Store, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	created := store
	created.ID = uuid.New().String()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	query := `
        INSERT INTO stores (id, name, quantity_products_in_stock, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)`

	_, err := database.Conn(ctx, r.DB).ExecContext(ctxTimeout, query,
		created.ID, created.Name, created.QuantityProductsInStock,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert store.", err)
		return domain.Store{}, errors.NewDBError("Failed to create store", err)
	}

	return created, nil
}

// FindByID fetches a store by id.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (domain.Store, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, quantity_products_in_stock, created_at, updated_at
        FROM stores
        WHERE id = $1`

	var store domain.Store
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, id).Scan(
		&store.ID, &store.Name, &store.QuantityProductsInStock,
		&store.CreatedAt, &store.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Store{}, errors.NewNotFoundError(fmt.Sprintf("Store with ID %s not found", id))
	}
	if err != nil {
		r.logger.Error("Failed to fetch store.", err)
		return domain.Store{}, errors.NewDBError("Failed to fetch store", err)
	}

	return store, nil
}

// Exists reports whether a store with the given id exists.
func (r *StoreRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT COUNT(1) FROM stores WHERE id = $1`

	var count int
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, id).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check store existence.", err)
		return false, errors.NewDBError("Failed to check store existence", err)
	}

	return count > 0, nil
}

// FindAll lists every store ordered by name.
func (r *StoreRepository) FindAll(ctx context.Context) ([]domain.Store, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, quantity_products_in_stock, created_at, updated_at
        FROM stores
        ORDER BY name`

	rows, err := database.Conn(ctx, r.DB).QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Failed to run FindAll stores query.", err)
		return nil, errors.NewDBError("Failed to fetch stores", err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var store domain.Store
		err := rows.Scan(
			&store.ID, &store.Name, &store.QuantityProductsInStock,
			&store.CreatedAt, &store.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewDBError("Failed to map stores", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error after iterating stores", err)
	}

	return stores, nil
}

// Update overwrites a store's mutable fields.
func (r *StoreRepository) Update(ctx context.Context, store domain.Store) (domain.Store, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	updated := store
	updated.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE stores
        SET name = $1, quantity_products_in_stock = $2, updated_at = $3
        WHERE id = $4
        RETURNING created_at`

	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query,
		updated.Name, updated.QuantityProductsInStock, updated.UpdatedAt, updated.ID,
	).Scan(&updated.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Store{}, errors.NewNotFoundError(fmt.Sprintf("Store with ID %s not found", store.ID))
	}
	if err != nil {
		r.logger.Error("Failed to update store.", err)
		return domain.Store{}, errors.NewDBError("Failed to update store", err)
	}

	return updated, nil
}

// Delete removes a store.
func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `DELETE FROM stores WHERE id = $1`

	result, err := database.Conn(ctx, r.DB).ExecContext(ctxTimeout, query, id)
	if err != nil {
		r.logger.Error("Failed to delete store.", err)
		return errors.NewDBError("Failed to delete store", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Store with ID %s not found", id))
	}

	return nil
}
