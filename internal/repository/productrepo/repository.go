package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gofulfil/internal/domain"
	"gofulfil/internal/errors"
	"gofulfil/internal/pkg/cache"
	"gofulfil/internal/pkg/database"
	"gofulfil/internal/pkg/logger"
)

// ProductRepository persists catalog products. Reads go through a
// cache-aside layer in Redis; writes invalidate the cached entry.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository creates and returns a new product repository.
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func cacheKey(id string) string {
	return "product:" + id
}

// Save persists a new product, assigning its id and timestamps.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	created := product
	created.ID = uuid.New().String()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	query := `
        INSERT INTO products (id, name, description, price, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := database.Conn(ctx, r.DB).ExecContext(ctxTimeout, query,
		created.ID, created.Name, created.Description, created.Price,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert product.", err)
		return domain.Product{}, errors.NewDBError("Failed to create product", err)
	}

	return created, nil
}

// FindByID fetches a product, serving from the cache when possible.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	if cached, err := r.Cache.Get(ctx, cacheKey(id)); err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			r.logger.Debug("Product served from cache.", map[string]interface{}{"id": id})
			return product, nil
		}
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, description, price, created_at, updated_at
        FROM products
        WHERE id = $1`

	var product domain.Product
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Product with ID %s not found", id))
	}
	if err != nil {
		r.logger.Error("Failed to fetch product.", err)
		return domain.Product{}, errors.NewDBError("Failed to fetch product", err)
	}

	if body, err := json.Marshal(product); err == nil {
		// Cache failures only cost the next read a DB round trip.
		if err := r.Cache.Set(ctx, cacheKey(id), string(body), r.CacheTTL); err != nil {
			r.logger.Warn("Failed to cache product.", map[string]interface{}{"id": id, "error": err.Error()})
		}
	}

	return product, nil
}

// Exists reports whether a product with the given id exists.
func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT COUNT(1) FROM products WHERE id = $1`

	var count int
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, id).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check product existence.", err)
		return false, errors.NewDBError("Failed to check product existence", err)
	}

	return count > 0, nil
}

// FindAll lists products with pagination and an optional name filter.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	query := `
        SELECT id, name, description, price, created_at, updated_at
        FROM products
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
        ORDER BY name
        LIMIT $2 OFFSET $3`

	rows, err := database.Conn(ctx, r.DB).QueryContext(ctxTimeout, query, filter.Name, limit, offset)
	if err != nil {
		r.logger.Error("Failed to run FindAll products query.", err)
		return nil, errors.NewDBError("Failed to fetch products", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewDBError("Failed to map products", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Error after iterating products", err)
	}

	return products, nil
}

// Update overwrites a product's mutable fields and invalidates its cache entry.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	updated := product
	updated.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE products
        SET name = $1, description = $2, price = $3, updated_at = $4
        WHERE id = $5
        RETURNING created_at`

	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query,
		updated.Name, updated.Description, updated.Price, updated.UpdatedAt, updated.ID,
	).Scan(&updated.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Product with ID %s not found", product.ID))
	}
	if err != nil {
		r.logger.Error("Failed to update product.", err)
		return domain.Product{}, errors.NewDBError("Failed to update product", err)
	}

	if err := r.Cache.Delete(ctx, cacheKey(updated.ID)); err != nil {
		r.logger.Warn("Failed to invalidate product cache.", map[string]interface{}{"id": updated.ID, "error": err.Error()})
	}

	return updated, nil
}

// Delete removes a product and invalidates its cache entry.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `DELETE FROM products WHERE id = $1`

	result, err := database.Conn(ctx, r.DB).ExecContext(ctxTimeout, query, id)
	if err != nil {
		r.logger.Error("Failed to delete product.", err)
		return errors.NewDBError("Failed to delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Product with ID %s not found", id))
	}

	if err := r.Cache.Delete(ctx, cacheKey(id)); err != nil {
		r.logger.Warn("Failed to invalidate product cache.", map[string]interface{}{"id": id, "error": err.Error()})
	}

	return nil
}
