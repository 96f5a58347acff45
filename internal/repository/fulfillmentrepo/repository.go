package fulfillmentrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gofulfil/internal/domain"
	"gofulfil/internal/errors"
	"gofulfil/internal/pkg/database"
	"gofulfil/internal/pkg/logger"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// FulfillmentRepository persists product–warehouse–store association rows.
// The composite primary key on the triple backs the duplicate check even
// when two writers race past validation.
type FulfillmentRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewFulfillmentRepository creates and returns a new fulfillment repository.
func NewFulfillmentRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *FulfillmentRepository {
	return &FulfillmentRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Exists reports whether the exact triple is already associated.
func (r *FulfillmentRepository) Exists(ctx context.Context, productID, warehouseBusinessUnit, storeID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT COUNT(1)
        FROM fulfillments
        WHERE product_id = $1 AND warehouse_business_unit = $2 AND store_id = $3`

	var count int
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, productID, warehouseBusinessUnit, storeID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check fulfillment existence.", err)
		return false, errors.NewDBError("Failed to check fulfillment existence", err)
	}

	return count > 0, nil
}

func (r *FulfillmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Fulfillment, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := database.Conn(ctx, r.DB).QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Failed to run fulfillment list query.", err)
		return nil, errors.NewDBError("Failed to fetch fulfillments", err)
	}
	defer rows.Close()

	var fulfillments []domain.Fulfillment
	for rows.Next() {
		var f domain.Fulfillment
		if err := rows.Scan(&f.ProductID, &f.WarehouseBusinessUnit, &f.StoreID, &f.CreatedAt); err != nil {
			r.logger.Error("Failed to map fulfillment row.", err)
			return nil, errors.NewDBError("Failed to map fulfillments", err)
		}
		fulfillments = append(fulfillments, f)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error after iterating fulfillments", err)
	}

	return fulfillments, nil
}

const fulfillmentColumns = `product_id, warehouse_business_unit, store_id, created_at`

// ListByStore returns every association for a store.
func (r *FulfillmentRepository) ListByStore(ctx context.Context, storeID string) ([]domain.Fulfillment, error) {
	return r.list(ctx, `
        SELECT `+fulfillmentColumns+`
        FROM fulfillments
        WHERE store_id = $1`, storeID)
}

// ListByProduct returns every association for a product.
func (r *FulfillmentRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Fulfillment, error) {
	return r.list(ctx, `
        SELECT `+fulfillmentColumns+`
        FROM fulfillments
        WHERE product_id = $1`, productID)
}

// ListByWarehouse returns every association for a warehouse business unit.
func (r *FulfillmentRepository) ListByWarehouse(ctx context.Context, warehouseBusinessUnit string) ([]domain.Fulfillment, error) {
	return r.list(ctx, `
        SELECT `+fulfillmentColumns+`
        FROM fulfillments
        WHERE warehouse_business_unit = $1`, warehouseBusinessUnit)
}

// ListAll returns every association.
func (r *FulfillmentRepository) ListAll(ctx context.Context) ([]domain.Fulfillment, error) {
	return r.list(ctx, `
        SELECT `+fulfillmentColumns+`
        FROM fulfillments
        ORDER BY store_id, product_id`)
}

func (r *FulfillmentRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, args...).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to run fulfillment count query.", err)
		return 0, errors.NewDBError("Failed to count fulfillments", err)
	}

	return count, nil
}

// CountWarehousesForProductInStore counts the rows matching product and store.
// Equivalent to the distinct warehouse count because the triple is unique.
func (r *FulfillmentRepository) CountWarehousesForProductInStore(ctx context.Context, productID, storeID string) (int, error) {
	return r.count(ctx, `
        SELECT COUNT(1)
        FROM fulfillments
        WHERE product_id = $1 AND store_id = $2`, productID, storeID)
}

// CountDistinctWarehousesForStore counts the distinct warehouses serving a store.
func (r *FulfillmentRepository) CountDistinctWarehousesForStore(ctx context.Context, storeID string) (int, error) {
	return r.count(ctx, `
        SELECT COUNT(DISTINCT warehouse_business_unit)
        FROM fulfillments
        WHERE store_id = $1`, storeID)
}

// CountDistinctProductsInWarehouse counts the distinct products a warehouse stores.
func (r *FulfillmentRepository) CountDistinctProductsInWarehouse(ctx context.Context, warehouseBusinessUnit string) (int, error) {
	return r.count(ctx, `
        SELECT COUNT(DISTINCT product_id)
        FROM fulfillments
        WHERE warehouse_business_unit = $1`, warehouseBusinessUnit)
}

// Insert persists a new association, stamping its creation time.
// A racing duplicate surfaces as a conflict via the composite primary key.
func (r *FulfillmentRepository) Insert(ctx context.Context, f domain.Fulfillment) (domain.Fulfillment, error) {
	r.logger.Debug("Inserting fulfillment.", map[string]interface{}{
		"product_id":              f.ProductID,
		"warehouse_business_unit": f.WarehouseBusinessUnit,
		"store_id":                f.StoreID,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	created := f
	created.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO fulfillments (product_id, warehouse_business_unit, store_id, created_at)
        VALUES ($1, $2, $3, $4)`

	_, err := database.Conn(ctx, r.DB).ExecContext(ctxTimeout, query,
		created.ProductID, created.WarehouseBusinessUnit, created.StoreID, created.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return domain.Fulfillment{}, errors.NewConflictError(fmt.Sprintf(
				"Fulfillment association already exists for Product %s, Warehouse %s, and Store %s",
				created.ProductID, created.WarehouseBusinessUnit, created.StoreID))
		}
		r.logger.Error("Failed to insert fulfillment.", err)
		return domain.Fulfillment{}, errors.NewDBError("Failed to create fulfillment", err)
	}

	r.logger.Info("Fulfillment created.", map[string]interface{}{
		"product_id":              created.ProductID,
		"warehouse_business_unit": created.WarehouseBusinessUnit,
		"store_id":                created.StoreID,
	})
	return created, nil
}

// DeleteByKey removes the association identified by the triple.
func (r *FulfillmentRepository) DeleteByKey(ctx context.Context, productID, warehouseBusinessUnit, storeID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        DELETE FROM fulfillments
        WHERE product_id = $1 AND warehouse_business_unit = $2 AND store_id = $3`

	result, err := database.Conn(ctx, r.DB).ExecContext(ctxTimeout, query, productID, warehouseBusinessUnit, storeID)
	if err != nil {
		r.logger.Error("Failed to delete fulfillment.", err)
		return errors.NewDBError("Failed to delete fulfillment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Failed to check affected rows", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf(
			"Fulfillment association does not exist for Product %s, Warehouse %s, and Store %s",
			productID, warehouseBusinessUnit, storeID))
	}

	r.logger.Info("Fulfillment deleted.", map[string]interface{}{
		"product_id":              productID,
		"warehouse_business_unit": warehouseBusinessUnit,
		"store_id":                storeID,
	})
	return nil
}
