package warehouseservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// WarehouseStore defines the contract the warehouse use cases expect from the
// persistence layer. Lookup, mutation and the two aggregation queries form one
// capability set; the use cases never depend on a concrete repository type.
type WarehouseStore interface {
	FindByBusinessUnitCode(ctx context.Context, code string) (domain.Warehouse, error)
	FindByID(ctx context.Context, id string) (domain.Warehouse, error)
	GetAll(ctx context.Context) ([]domain.Warehouse, error)
	Create(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	Update(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	CountActiveAtLocation(ctx context.Context, locationID string) (int, error)
	TotalActiveCapacityAtLocation(ctx context.Context, locationID string) (int, error)
}

// LocationResolver resolves a location identifier against the fixed directory.
type LocationResolver interface {
	Resolve(identifier string) (domain.Location, error)
}

// TxRunner runs a validate-then-mutate sequence inside one transaction scope
// so the counts and the write see a consistent snapshot.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the warehouse lifecycle use cases: Create, Archive, Replace.
type Service struct {
	store     WarehouseStore
	locations LocationResolver
	tx        TxRunner
	logger    logger.Logger
}

// NewService creates and returns a new warehouse lifecycle service.
func NewService(store WarehouseStore, locations LocationResolver, tx TxRunner, logger logger.Logger) *Service {
	return &Service{store: store, locations: locations, tx: tx, logger: logger}
}

// Create validates and persists a new warehouse unit. The gates run in order,
// the first failure wins, and no mutation happens before all gates pass.
func (s *Service) Create(ctx domain.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	s.logger.Debug("Creating warehouse.", map[string]interface{}{
		"business_unit_code": warehouse.BusinessUnitCode,
		"location":           warehouse.Location,
	})

	if strings.TrimSpace(warehouse.BusinessUnitCode) == "" {
		return domain.Warehouse{}, apperror.NewValidationError("Business unit code must not be empty.")
	}
	if warehouse.Capacity < 0 || warehouse.Stock < 0 {
		return domain.Warehouse{}, apperror.NewValidationError("Capacity and stock must not be negative.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Create", nil)
	}

	var created domain.Warehouse
	err := s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		// 1. Business unit code must be unique.
		_, err := s.store.FindByBusinessUnitCode(txCtx, warehouse.BusinessUnitCode)
		if err == nil {
			s.logger.Warn("Warehouse creation failed: business unit code already exists.", map[string]interface{}{
				"business_unit_code": warehouse.BusinessUnitCode,
			})
			return apperror.NewConflictError(fmt.Sprintf(
				"Warehouse with business unit code %s already exists", warehouse.BusinessUnitCode))
		}
		if _, notFound := err.(*apperror.NotFoundError); !notFound {
			return err
		}

		// 2. Location must resolve.
		location, err := s.locations.Resolve(warehouse.Location)
		if err != nil {
			return apperror.NewNotFoundError(fmt.Sprintf("Location %s is not valid", warehouse.Location))
		}

		// 3. Creation feasibility: max number of warehouses at the location.
		activeCount, err := s.store.CountActiveAtLocation(txCtx, warehouse.Location)
		if err != nil {
			return err
		}
		if activeCount >= location.MaxNumberOfWarehouses {
			return apperror.NewValidationError(fmt.Sprintf(
				"Maximum number of warehouses (%d) reached for location %s",
				location.MaxNumberOfWarehouses, warehouse.Location))
		}

		// 4. Aggregate capacity at the location.
		currentTotalCapacity, err := s.store.TotalActiveCapacityAtLocation(txCtx, warehouse.Location)
		if err != nil {
			return err
		}
		newTotalCapacity := currentTotalCapacity + warehouse.Capacity
		if newTotalCapacity > location.MaxCapacity {
			return apperror.NewValidationError(fmt.Sprintf(
				"Total capacity %d would exceed location's maximum capacity of %d",
				newTotalCapacity, location.MaxCapacity))
		}

		// 5. The warehouse must be able to hold its own stock.
		if warehouse.Stock > warehouse.Capacity {
			return apperror.NewValidationError(fmt.Sprintf(
				"Warehouse stock (%d) exceeds capacity (%d)", warehouse.Stock, warehouse.Capacity))
		}

		created, err = s.store.Create(txCtx, warehouse)
		return err
	})
	if err != nil {
		return domain.Warehouse{}, err
	}

	s.logger.Info("Warehouse created.", map[string]interface{}{
		"id":                 created.ID,
		"business_unit_code": created.BusinessUnitCode,
	})
	return created, nil
}

// Archive soft-deletes the warehouse identified by its business unit code.
// Re-archiving simply re-stamps the timestamp.
func (s *Service) Archive(ctx domain.Context, businessUnitCode string) error {
	s.logger.Debug("Archiving warehouse.", map[string]interface{}{"business_unit_code": businessUnitCode})

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Archive", nil)
	}

	err := s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		existing, err := s.store.FindByBusinessUnitCode(txCtx, businessUnitCode)
		if err != nil {
			s.logger.Warn("Warehouse archival failed: business unit code not found.", map[string]interface{}{
				"business_unit_code": businessUnitCode,
			})
			return err
		}

		now := time.Now().UTC()
		existing.ArchivedAt = &now

		_, err = s.store.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Warehouse archived.", map[string]interface{}{"business_unit_code": businessUnitCode})
	return nil
}

// ArchiveByID resolves the warehouse by its surrogate id and archives it.
func (s *Service) ArchiveByID(ctx domain.Context, id string) error {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for ArchiveByID", nil)
	}

	return s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		warehouse, err := s.store.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		return s.Archive(txCtx, warehouse.BusinessUnitCode)
	})
}

// Replace rewrites an existing warehouse's location and capacity while
// preserving its business unit code. Stock is not adjustable through
// replacement: the new unit must carry exactly the old unit's stock.
func (s *Service) Replace(ctx domain.Context, businessUnitCode string, newWarehouse domain.Warehouse) (domain.Warehouse, error) {
	s.logger.Debug("Replacing warehouse.", map[string]interface{}{"business_unit_code": businessUnitCode})

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Replace", nil)
	}

	newWarehouse.BusinessUnitCode = businessUnitCode

	var replaced domain.Warehouse
	err := s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		// 1. The warehouse being replaced must exist.
		oldWarehouse, err := s.store.FindByBusinessUnitCode(txCtx, businessUnitCode)
		if err != nil {
			s.logger.Warn("Warehouse replacement failed: business unit code not found.", map[string]interface{}{
				"business_unit_code": businessUnitCode,
			})
			return err
		}

		// 2. The new location must resolve.
		location, err := s.locations.Resolve(newWarehouse.Location)
		if err != nil {
			return apperror.NewNotFoundError(fmt.Sprintf("Location %s is not valid", newWarehouse.Location))
		}

		// 3. Stock matching: replacement transfers the stock as-is.
		if newWarehouse.Stock != oldWarehouse.Stock {
			return apperror.NewValidationError(fmt.Sprintf(
				"New warehouse stock (%d) must match old warehouse stock (%d)",
				newWarehouse.Stock, oldWarehouse.Stock))
		}

		// 4. The new unit must accommodate the transferred stock.
		if newWarehouse.Capacity < newWarehouse.Stock {
			return apperror.NewValidationError(fmt.Sprintf(
				"New warehouse capacity (%d) cannot accommodate stock (%d)",
				newWarehouse.Capacity, newWarehouse.Stock))
		}

		// 5. Aggregate capacity at the new location. When staying in place the
		// old unit's capacity leaves the pool, so subtract it before adding.
		currentTotalCapacity, err := s.store.TotalActiveCapacityAtLocation(txCtx, newWarehouse.Location)
		if err != nil {
			return err
		}
		if newWarehouse.Location == oldWarehouse.Location {
			currentTotalCapacity -= oldWarehouse.Capacity
		}
		newTotalCapacity := currentTotalCapacity + newWarehouse.Capacity
		if newTotalCapacity > location.MaxCapacity {
			return apperror.NewValidationError(fmt.Sprintf(
				"Total capacity %d would exceed location's maximum capacity of %d",
				newTotalCapacity, location.MaxCapacity))
		}

		replaced, err = s.store.Update(txCtx, newWarehouse)
		return err
	})
	if err != nil {
		return domain.Warehouse{}, err
	}

	s.logger.Info("Warehouse replaced.", map[string]interface{}{
		"business_unit_code": replaced.BusinessUnitCode,
		"location":           replaced.Location,
	})
	return replaced, nil
}

// GetByID fetches a warehouse unit by its surrogate id.
func (s *Service) GetByID(ctx domain.Context, id string) (domain.Warehouse, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for GetByID", nil)
	}

	return s.store.FindByID(ctxGo, id)
}

// List returns every warehouse unit.
func (s *Service) List(ctx domain.Context) ([]domain.Warehouse, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for List", nil)
	}

	warehouses, err := s.store.GetAll(ctxGo)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Warehouses listed.", map[string]interface{}{"count": len(warehouses)})
	return warehouses, nil
}
