package operatorrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gofulfil/internal/domain"
	"gofulfil/internal/errors"
	"gofulfil/internal/pkg/database"
	"gofulfil/internal/pkg/logger"
)

const uniqueViolation = "23505"

// OperatorRepository persists operator accounts.
type OperatorRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOperatorRepository creates and returns a new operator repository.
func NewOperatorRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *OperatorRepository {
	return &OperatorRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save persists a new operator, assigning its id and timestamps.
// A duplicate email surfaces as a conflict.
func (r *OperatorRepository) Save(ctx context.Context, operator domain.Operator) (domain.Operator, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	created := operator
	created.ID = uuid.New().String()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	query := `
        INSERT INTO operators (id, email, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := database.Conn(ctx, r.DB).ExecContext(ctxTimeout, query,
		created.ID, created.Email, created.PasswordHash, created.Role,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return domain.Operator{}, errors.NewConflictError(
				fmt.Sprintf("Operator with email %s already exists", created.Email))
		}
		r.logger.Error("Failed to insert operator.", err)
		return domain.Operator{}, errors.NewDBError("Failed to create operator", err)
	}

	return created, nil
}

// FindByEmail fetches an operator by email.
func (r *OperatorRepository) FindByEmail(ctx context.Context, email string) (domain.Operator, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, email, password_hash, role, created_at, updated_at
        FROM operators
        WHERE email = $1`

	var operator domain.Operator
	err := database.Conn(ctx, r.DB).QueryRowContext(ctxTimeout, query, email).Scan(
		&operator.ID, &operator.Email, &operator.PasswordHash, &operator.Role,
		&operator.CreatedAt, &operator.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Operator{}, errors.NewNotFoundError(fmt.Sprintf("Operator with email %s not found", email))
	}
	if err != nil {
		r.logger.Error("Failed to fetch operator.", err)
		return domain.Operator{}, errors.NewDBError("Failed to fetch operator", err)
	}

	return operator, nil
}
