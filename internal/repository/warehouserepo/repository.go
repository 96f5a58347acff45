package warehouserepo

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

// WarehouseRepository implements the warehouse store capability set:
// lookup, mutation and the two aggregation queries the lifecycle gates need.
type WarehouseRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewWarehouseRepository creates and returns a new warehouse repository.
func NewWarehouseRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *WarehouseRepository {
	return &WarehouseRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const warehouseColumns = `id, business_unit_code, location, capacity, stock, created_at, archived_at`

func scanWarehouse(row *sql.Row) (domain.Warehouse, error) {
	var warehouse domain.Warehouse
	err := row.Scan(
		&warehouse.ID, &warehouse.BusinessUnitCode, &warehouse.Location,
		&warehouse.Capacity, &warehouse.Stock, &warehouse.CreatedAt, &warehouse.ArchivedAt,
	)
	return warehouse, err
}

// FindByBusinessUnitCode looks a warehouse up by its business identity key.
func (r *WarehouseRepository) FindByBusinessUnitCode(ctx context.Context, code string) (domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + warehouseColumns + `
        FROM warehouses
        WHERE business_unit_code = $1`

	warehouse, err := scanWarehouse(database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, code))
	if err == sql.ErrNoRows {
		return domain.Warehouse{}, errors.NewNotFoundError(
			fmt.Sprintf("Warehouse with business unit code %s not found", code))
	}
	if err != nil {
		r.logger.Error("Failed to fetch warehouse by business unit code.", err)
		return domain.Warehouse{}, errors.NewDBError("Failed to fetch warehouse", err)
	}

	return warehouse, nil
}

// FindByID looks a warehouse up by its surrogate id.
func (r *WarehouseRepository) FindByID(ctx context.Context, id string) (domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + warehouseColumns + `
        FROM warehouses
        WHERE id = $1`

	warehouse, err := scanWarehouse(database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Warehouse{}, errors.NewNotFoundError(
			fmt.Sprintf("Warehouse with ID %s not found", id))
	}
	if err != nil {
		r.logger.Error("Failed to fetch warehouse by ID.", err)
		return domain.Warehouse{}, errors.NewDBError("Failed to fetch warehouse", err)
	}

	return warehouse, nil
}

// ExistsByBusinessUnitCode reports whether a warehouse with the code exists.
func (r *WarehouseRepository) ExistsByBusinessUnitCode(ctx context.Context, code string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT COUNT(1) FROM warehouses WHERE business_unit_code = $1`

	var count int
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, code).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check warehouse existence.", err)
		return false, errors.NewDBError("Failed to check warehouse existence", err)
	}

	return count > 0, nil
}

// GetAll returns every warehouse unit, archived included, ordered by code.
func (r *WarehouseRepository) GetAll(ctx context.Context) ([]domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + warehouseColumns + `
        FROM warehouses
        ORDER BY business_unit_code`

	rows, err := database.Conn(ctx, r.DB).QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Failed to run GetAll warehouses query.", err)
		return nil, errors.NewDBError("Failed to fetch warehouses", err)
	}
	defer rows.Close()

	var warehouses []domain.Warehouse
	for rows.Next() {
		var warehouse domain.Warehouse
		err := rows.Scan(
			&warehouse.ID, &warehouse.BusinessUnitCode, &warehouse.Location,
			&warehouse.Capacity, &warehouse.Stock, &warehouse.CreatedAt, &warehouse.ArchivedAt,
		)
		if err != nil {
			r.logger.Error("Failed to map warehouse row.", err)
			return nil, errors.NewDBError("Failed to map warehouses", err)
		}
		warehouses = append(warehouses, warehouse)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error after iterating warehouses", err)
	}

	return warehouses, nil
}

// Create inserts a new warehouse, assigning the surrogate id and the
// creation timestamp. Returns a fresh record, never the input value.
func (r *WarehouseRepository) Create(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	r.logger.Debug("Inserting warehouse.", map[string]interface{}{"business_unit_code": warehouse.BusinessUnitCode})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	created := warehouse
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now().UTC()
	created.ArchivedAt = nil

	query := `
        INSERT INTO warehouses (id, business_unit_code, location, capacity, stock, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := database.Conn(ctx, r.DB).ExecContext(ctxTimeout, query,
		created.ID, created.BusinessUnitCode, created.Location,
		created.Capacity, created.Stock, created.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert warehouse.", err)
		return domain.Warehouse{}, errors.NewDBError("Failed to create warehouse", err)
	}

	r.logger.Info("Warehouse created.", map[string]interface{}{
		"id":                 created.ID,
		"business_unit_code": created.BusinessUnitCode,
	})
	return created, nil
}

// Update overwrites location, capacity and stock of the warehouse identified
// by its business unit code. The archive timestamp is only written when the
// incoming value is set; an update can never un-archive a warehouse.
func (r *WarehouseRepository) Update(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	r.logger.Debug("Updating warehouse.", map[string]interface{}{"business_unit_code": warehouse.BusinessUnitCode})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE warehouses
        SET location = $1, capacity = $2, stock = $3,
            archived_at = COALESCE($4, archived_at)
        WHERE business_unit_code = $5
        RETURNING ` + warehouseColumns

	updated, err := scanWarehouse(database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query,
		warehouse.Location, warehouse.Capacity, warehouse.Stock,
		warehouse.ArchivedAt, warehouse.BusinessUnitCode,
	))
	if err == sql.ErrNoRows {
		return domain.Warehouse{}, errors.NewNotFoundError(
			fmt.Sprintf("Warehouse with business unit code %s not found", warehouse.BusinessUnitCode))
	}
	if err != nil {
		r.logger.Error("Failed to update warehouse.", err)
		return domain.Warehouse{}, errors.NewDBError("Failed to update warehouse", err)
	}

	r.logger.Info("Warehouse updated.", map[string]interface{}{
		"business_unit_code": updated.BusinessUnitCode,
		"archived":           updated.IsArchived(),
	})
	return updated, nil
}

// CountActiveAtLocation counts the non-archived warehouses at a location.
func (r *WarehouseRepository) CountActiveAtLocation(ctx context.Context, locationID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT COUNT(1)
        FROM warehouses
        WHERE location = $1 AND archived_at IS NULL`

	var count int
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, locationID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count active warehouses.", err)
		return 0, errors.NewDBError("Failed to count active warehouses", err)
	}

	return count, nil
}

// TotalActiveCapacityAtLocation sums the capacity over the same active set.
// Missing capacity counts as zero.
func (r *WarehouseRepository) TotalActiveCapacityAtLocation(ctx context.Context, locationID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT COALESCE(SUM(COALESCE(capacity, 0)), 0)
        FROM warehouses
        WHERE location = $1 AND archived_at IS NULL`

	var total int
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, locationID).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum active capacity.", err)
		return 0, errors.NewDBError("Failed to sum active capacity", err)
	}

	return total, nil
}
