package fulfillmentservice

import (
	"context"
	"fmt"
	"strings"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// Business constraint limits on fulfilment associations.
const (
	MaxWarehousesPerProductPerStore = 2
	MaxWarehousesPerStore           = 3
	MaxProductsPerWarehouse         = 5
)

// FulfillmentStore defines the persistence contract the validation engine
// needs: existence check, per-dimension listing, the three counting queries
// behind the business constraints, and the two write operations.
type FulfillmentStore interface {
	Exists(ctx context.Context, productID, warehouseBusinessUnit, storeID string) (bool, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Fulfillment, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Fulfillment, error)
	ListByWarehouse(ctx context.Context, warehouseBusinessUnit string) ([]domain.Fulfillment, error)
	ListAll(ctx context.Context) ([]domain.Fulfillment, error)
	CountWarehousesForProductInStore(ctx context.Context, productID, storeID string) (int, error)
	CountDistinctWarehousesForStore(ctx context.Context, storeID string) (int, error)
	CountDistinctProductsInWarehouse(ctx context.Context, warehouseBusinessUnit string) (int, error)
	Insert(ctx context.Context, f domain.Fulfillment) (domain.Fulfillment, error)
	DeleteByKey(ctx context.Context, productID, warehouseBusinessUnit, storeID string) error
}

// ProductChecker reports whether a product exists.
type ProductChecker interface {
	Exists(ctx context.Context, productID string) (bool, error)
}

// StoreChecker reports whether a store exists.
type StoreChecker interface {
	Exists(ctx context.Context, storeID string) (bool, error)
}

// WarehouseChecker reports whether a warehouse exists by business unit code.
type WarehouseChecker interface {
	ExistsByBusinessUnitCode(ctx context.Context, code string) (bool, error)
}

// TxRunner runs a validate-then-mutate sequence inside one transaction scope.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the fulfilment validation engine plus the association use cases.
type Service struct {
	fulfillments FulfillmentStore
	products     ProductChecker
	stores       StoreChecker
	warehouses   WarehouseChecker
	tx           TxRunner
	logger       logger.Logger
}

// NewService creates and returns a new fulfilment service.
func NewService(
	fulfillments FulfillmentStore,
	products ProductChecker,
	stores StoreChecker,
	warehouses WarehouseChecker,
	tx TxRunner,
	logger logger.Logger,
) *Service {
	return &Service{
		fulfillments: fulfillments,
		products:     products,
		stores:       stores,
		warehouses:   warehouses,
		tx:           tx,
		logger:       logger,
	}
}

// ValidateCreation checks whether an association may be created.
//
// The existence phase collects every missing entity before failing; it
// short-circuits before the constraint phase. Within the constraint phase all
// violations are collected and reported together. The validator performs no
// mutation.
func (s *Service) ValidateCreation(ctx context.Context, productID, warehouseBusinessUnit, storeID string) error {
	var violations []string

	// Existence phase: report every missing entity, not just the first.
	productOK, err := s.products.Exists(ctx, productID)
	if err != nil {
		return err
	}
	if !productOK {
		violations = append(violations, fmt.Sprintf("Product with ID %s does not exist", productID))
	}

	warehouseOK, err := s.warehouses.ExistsByBusinessUnitCode(ctx, warehouseBusinessUnit)
	if err != nil {
		return err
	}
	if !warehouseOK {
		violations = append(violations, fmt.Sprintf("Warehouse with business unit %s does not exist", warehouseBusinessUnit))
	}

	storeOK, err := s.stores.Exists(ctx, storeID)
	if err != nil {
		return err
	}
	if !storeOK {
		violations = append(violations, fmt.Sprintf("Store with ID %s does not exist", storeID))
	}

	if len(violations) > 0 {
		return apperror.NewNotFoundError(strings.Join(violations, "; "))
	}

	// Duplicate check.
	exists, err := s.fulfillments.Exists(ctx, productID, warehouseBusinessUnit, storeID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflictError(fmt.Sprintf(
			"Fulfillment association already exists for Product %s, Warehouse %s, and Store %s",
			productID, warehouseBusinessUnit, storeID))
	}

	// Constraint 1: each product can be fulfilled by at most 2 different
	// warehouses per store.
	warehouseCountForProduct, err := s.fulfillments.CountWarehousesForProductInStore(ctx, productID, storeID)
	if err != nil {
		return err
	}
	if warehouseCountForProduct >= MaxWarehousesPerProductPerStore {
		violations = append(violations, fmt.Sprintf(
			"Product %s already has %d warehouses fulfilling it for Store %s. Maximum allowed is %d",
			productID, MaxWarehousesPerProductPerStore, storeID, MaxWarehousesPerProductPerStore))
	}

	// Constraint 2: each store can be fulfilled by at most 3 different
	// warehouses. Only applies when this would be a new warehouse for the
	// store; reusing an already associated warehouse does not raise the
	// distinct count.
	storeFulfillments, err := s.fulfillments.ListByStore(ctx, storeID)
	if err != nil {
		return err
	}
	isNewWarehouseForStore := true
	for _, f := range storeFulfillments {
		if f.WarehouseBusinessUnit == warehouseBusinessUnit {
			isNewWarehouseForStore = false
			break
		}
	}
	if isNewWarehouseForStore {
		distinctWarehouseCount, err := s.fulfillments.CountDistinctWarehousesForStore(ctx, storeID)
		if err != nil {
			return err
		}
		if distinctWarehouseCount >= MaxWarehousesPerStore {
			violations = append(violations, fmt.Sprintf(
				"Store %s already has %d different warehouses fulfilling it. Maximum allowed is %d",
				storeID, MaxWarehousesPerStore, MaxWarehousesPerStore))
		}
	}

	// Constraint 3: each warehouse can store at most 5 types of products.
	// Only applies when this would be a new product for the warehouse.
	warehouseFulfillments, err := s.fulfillments.ListByWarehouse(ctx, warehouseBusinessUnit)
	if err != nil {
		return err
	}
	isNewProductForWarehouse := true
	for _, f := range warehouseFulfillments {
		if f.ProductID == productID {
			isNewProductForWarehouse = false
			break
		}
	}
	if isNewProductForWarehouse {
		distinctProductCount, err := s.fulfillments.CountDistinctProductsInWarehouse(ctx, warehouseBusinessUnit)
		if err != nil {
			return err
		}
		if distinctProductCount >= MaxProductsPerWarehouse {
			violations = append(violations, fmt.Sprintf(
				"Warehouse %s already has %d different products. Maximum allowed is %d",
				warehouseBusinessUnit, MaxProductsPerWarehouse, MaxProductsPerWarehouse))
		}
	}

	if len(violations) > 0 {
		return apperror.NewValidationError("Constraint violations: " + strings.Join(violations, "; "))
	}

	return nil
}

// ValidateDeletion checks whether an association may be deleted.
func (s *Service) ValidateDeletion(ctx context.Context, productID, warehouseBusinessUnit, storeID string) error {
	exists, err := s.fulfillments.Exists(ctx, productID, warehouseBusinessUnit, storeID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFoundError(fmt.Sprintf(
			"Fulfillment association does not exist for Product %s, Warehouse %s, and Store %s",
			productID, warehouseBusinessUnit, storeID))
	}
	return nil
}

// Create validates and persists a new association. Validation and insert run
// inside one transaction so the counts and the write stay consistent.
func (s *Service) Create(ctx domain.Context, req domain.FulfillmentRequest) (domain.Fulfillment, error) {
	s.logger.Debug("Creating fulfillment.", map[string]interface{}{
		"product_id":              req.ProductID,
		"warehouse_business_unit": req.WarehouseBusinessUnit,
		"store_id":                req.StoreID,
	})

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Create", nil)
	}

	var created domain.Fulfillment
	err := s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		if err := s.ValidateCreation(txCtx, req.ProductID, req.WarehouseBusinessUnit, req.StoreID); err != nil {
			return err
		}

		var err error
		created, err = s.fulfillments.Insert(txCtx, domain.Fulfillment{
			ProductID:             req.ProductID,
			WarehouseBusinessUnit: req.WarehouseBusinessUnit,
			StoreID:               req.StoreID,
		})
		return err
	})
	if err != nil {
		return domain.Fulfillment{}, err
	}

	s.logger.Info("Fulfillment created.", map[string]interface{}{
		"product_id":              created.ProductID,
		"warehouse_business_unit": created.WarehouseBusinessUnit,
		"store_id":                created.StoreID,
	})
	return created, nil
}

// Delete validates and removes an existing association.
func (s *Service) Delete(ctx domain.Context, req domain.FulfillmentRequest) error {
	s.logger.Debug("Deleting fulfillment.", map[string]interface{}{
		"product_id":              req.ProductID,
		"warehouse_business_unit": req.WarehouseBusinessUnit,
		"store_id":                req.StoreID,
	})

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Delete", nil)
	}

	return s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		if err := s.ValidateDeletion(txCtx, req.ProductID, req.WarehouseBusinessUnit, req.StoreID); err != nil {
			return err
		}
		return s.fulfillments.DeleteByKey(txCtx, req.ProductID, req.WarehouseBusinessUnit, req.StoreID)
	})
}

// ListByStore returns every association for a store.
func (s *Service) ListByStore(ctx domain.Context, storeID string) ([]domain.Fulfillment, error) {
	return s.fulfillments.ListByStore(s.goCtx(ctx, "ListByStore"), storeID)
}

// ListByProduct returns every association for a product.
func (s *Service) ListByProduct(ctx domain.Context, productID string) ([]domain.Fulfillment, error) {
	return s.fulfillments.ListByProduct(s.goCtx(ctx, "ListByProduct"), productID)
}

// ListByWarehouse returns every association for a warehouse.
func (s *Service) ListByWarehouse(ctx domain.Context, warehouseBusinessUnit string) ([]domain.Fulfillment, error) {
	return s.fulfillments.ListByWarehouse(s.goCtx(ctx, "ListByWarehouse"), warehouseBusinessUnit)
}

// ListAll returns every association.
func (s *Service) ListAll(ctx domain.Context) ([]domain.Fulfillment, error) {
	return s.fulfillments.ListAll(s.goCtx(ctx, "ListAll"))
}

// StoreStats summarizes a store's distinct warehouse usage against its limit.
func (s *Service) StoreStats(ctx domain.Context, storeID string) (domain.FulfillmentStats, error) {
	ctxGo := s.goCtx(ctx, "StoreStats")

	distinctWarehouses, err := s.fulfillments.CountDistinctWarehousesForStore(ctxGo, storeID)
	if err != nil {
		return domain.FulfillmentStats{}, err
	}
	fulfillments, err := s.fulfillments.ListByStore(ctxGo, storeID)
	if err != nil {
		return domain.FulfillmentStats{}, err
	}

	return domain.FulfillmentStats{
		EntityType:        "Store",
		EntityID:          storeID,
		CurrentCount:      distinctWarehouses,
		MaxAllowed:        MaxWarehousesPerStore,
		TotalFulfillments: len(fulfillments),
		HasCapacity:       distinctWarehouses < MaxWarehousesPerStore,
	}, nil
}

// WarehouseStats summarizes a warehouse's distinct product usage against its limit.
func (s *Service) WarehouseStats(ctx domain.Context, warehouseBusinessUnit string) (domain.FulfillmentStats, error) {
	ctxGo := s.goCtx(ctx, "WarehouseStats")

	distinctProducts, err := s.fulfillments.CountDistinctProductsInWarehouse(ctxGo, warehouseBusinessUnit)
	if err != nil {
		return domain.FulfillmentStats{}, err
	}
	fulfillments, err := s.fulfillments.ListByWarehouse(ctxGo, warehouseBusinessUnit)
	if err != nil {
		return domain.FulfillmentStats{}, err
	}

	return domain.FulfillmentStats{
		EntityType:        "Warehouse",
		EntityID:          warehouseBusinessUnit,
		CurrentCount:      distinctProducts,
		MaxAllowed:        MaxProductsPerWarehouse,
		TotalFulfillments: len(fulfillments),
		HasCapacity:       distinctProducts < MaxProductsPerWarehouse,
	}, nil
}

// ProductStats summarizes a product's spread across stores and warehouses.
func (s *Service) ProductStats(ctx domain.Context, productID string) (domain.FulfillmentStats, error) {
	ctxGo := s.goCtx(ctx, "ProductStats")

	fulfillments, err := s.fulfillments.ListByProduct(ctxGo, productID)
	if err != nil {
		return domain.FulfillmentStats{}, err
	}

	warehouses := make(map[string]struct{})
	for _, f := range fulfillments {
		warehouses[f.WarehouseBusinessUnit] = struct{}{}
	}

	return domain.FulfillmentStats{
		EntityType:        "Product",
		EntityID:          productID,
		CurrentCount:      len(warehouses),
		MaxAllowed:        MaxWarehousesPerProductPerStore,
		TotalFulfillments: len(fulfillments),
		HasCapacity:       true,
	}, nil
}

func (s *Service) goCtx(ctx domain.Context, op string) context.Context {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for "+op, nil)
	}
	return ctxGo
}
