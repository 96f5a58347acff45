package fulfillmentservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
	"gofulfil/internal/service/fulfillmentservice"
)

// MockFulfillmentStore is a mock implementation of the FulfillmentStore interface.
type MockFulfillmentStore struct {
	mock.Mock
}

func (m *MockFulfillmentStore) Exists(ctx context.Context, productID, warehouseBusinessUnit, storeID string) (bool, error) {
	args := m.Called(ctx, productID, warehouseBusinessUnit, storeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFulfillmentStore) ListByStore(ctx context.Context, storeID string) ([]domain.Fulfillment, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]domain.Fulfillment), args.Error(1)
}

func (m *MockFulfillmentStore) ListByProduct(ctx context.Context, productID string) ([]domain.Fulfillment, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.Fulfillment), args.Error(1)
}

func (m *MockFulfillmentStore) ListByWarehouse(ctx context.Context, warehouseBusinessUnit string) ([]domain.Fulfillment, error) {
	args := m.Called(ctx, warehouseBusinessUnit)
	return args.Get(0).([]domain.Fulfillment), args.Error(1)
}

func (m *MockFulfillmentStore) ListAll(ctx context.Context) ([]domain.Fulfillment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Fulfillment), args.Error(1)
}

func (m *MockFulfillmentStore) CountWarehousesForProductInStore(ctx context.Context, productID, storeID string) (int, error) {
	args := m.Called(ctx, productID, storeID)
	return args.Int(0), args.Error(1)
}

func (m *MockFulfillmentStore) CountDistinctWarehousesForStore(ctx context.Context, storeID string) (int, error) {
	args := m.Called(ctx, storeID)
	return args.Int(0), args.Error(1)
}

func (m *MockFulfillmentStore) CountDistinctProductsInWarehouse(ctx context.Context, warehouseBusinessUnit string) (int, error) {
	args := m.Called(ctx, warehouseBusinessUnit)
	return args.Int(0), args.Error(1)
}

func (m *MockFulfillmentStore) Insert(ctx context.Context, f domain.Fulfillment) (domain.Fulfillment, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(domain.Fulfillment), args.Error(1)
}

func (m *MockFulfillmentStore) DeleteByKey(ctx context.Context, productID, warehouseBusinessUnit, storeID string) error {
	args := m.Called(ctx, productID, warehouseBusinessUnit, storeID)
	return args.Error(0)
}

// MockProductChecker is a mock implementation of the ProductChecker interface.
type MockProductChecker struct {
	mock.Mock
}

func (m *MockProductChecker) Exists(ctx context.Context, productID string) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

// MockStoreChecker is a mock implementation of the StoreChecker interface.
type MockStoreChecker struct {
	mock.Mock
}

func (m *MockStoreChecker) Exists(ctx context.Context, storeID string) (bool, error) {
	args := m.Called(ctx, storeID)
	return args.Bool(0), args.Error(1)
}

// MockWarehouseChecker is a mock implementation of the WarehouseChecker interface.
type MockWarehouseChecker struct {
	mock.Mock
}

func (m *MockWarehouseChecker) ExistsByBusinessUnitCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	fulfillments *MockFulfillmentStore
	products     *MockProductChecker
	stores       *MockStoreChecker
	warehouses   *MockWarehouseChecker
	svc          *fulfillmentservice.Service
}

func newFixture() *fixture {
	f := &fixture{
		fulfillments: new(MockFulfillmentStore),
		products:     new(MockProductChecker),
		stores:       new(MockStoreChecker),
		warehouses:   new(MockWarehouseChecker),
	}
	f.svc = fulfillmentservice.NewService(
		f.fulfillments, f.products, f.stores, f.warehouses, fakeTxRunner{}, logger.NewLogger("error"))
	return f
}

// expectEntitiesExist stubs the existence phase for a fully known triple.
func (f *fixture) expectEntitiesExist(productID, warehouseBU, storeID string) {
	f.products.On("Exists", mock.Anything, productID).Return(true, nil)
	f.warehouses.On("ExistsByBusinessUnitCode", mock.Anything, warehouseBU).Return(true, nil)
	f.stores.On("Exists", mock.Anything, storeID).Return(true, nil)
}

// TestCreateFulfillment_Success covers the full validation pipeline passing
// with counts just below every limit.
func TestCreateFulfillment_Success(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"}

	f.expectEntitiesExist("p1", "MWH.001", "s1")
	f.fulfillments.On("Exists", mock.Anything, "p1", "MWH.001", "s1").Return(false, nil)
	f.fulfillments.On("CountWarehousesForProductInStore", mock.Anything, "p1", "s1").Return(1, nil)
	f.fulfillments.On("ListByStore", mock.Anything, "s1").Return([]domain.Fulfillment{}, nil)
	f.fulfillments.On("CountDistinctWarehousesForStore", mock.Anything, "s1").Return(2, nil)
	f.fulfillments.On("ListByWarehouse", mock.Anything, "MWH.001").Return([]domain.Fulfillment{}, nil)
	f.fulfillments.On("CountDistinctProductsInWarehouse", mock.Anything, "MWH.001").Return(4, nil)
	f.fulfillments.On("Insert", mock.Anything, domain.Fulfillment{
		ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1",
	}).Return(domain.Fulfillment{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"}, nil)

	created, err := f.svc.Create(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, "p1", created.ProductID)
	f.fulfillments.AssertExpectations(t)
}

// TestCreateFulfillment_Fail_AllEntitiesMissing reports every missing entity in
// one message instead of stopping at the first.
func TestCreateFulfillment_Fail_AllEntitiesMissing(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p9", WarehouseBusinessUnit: "MWH.999", StoreID: "s9"}

	f.products.On("Exists", mock.Anything, "p9").Return(false, nil)
	f.warehouses.On("ExistsByBusinessUnitCode", mock.Anything, "MWH.999").Return(false, nil)
	f.stores.On("Exists", mock.Anything, "s9").Return(false, nil)

	_, err := f.svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	assert.Contains(t, err.Error(), "Product with ID p9 does not exist")
	assert.Contains(t, err.Error(), "Warehouse with business unit MWH.999 does not exist")
	assert.Contains(t, err.Error(), "Store with ID s9 does not exist")
	f.fulfillments.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

// TestCreateFulfillment_Fail_Duplicate rejects an already existing triple.
func TestCreateFulfillment_Fail_Duplicate(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"}

	f.expectEntitiesExist("p1", "MWH.001", "s1")
	f.fulfillments.On("Exists", mock.Anything, "p1", "MWH.001", "s1").Return(true, nil)

	_, err := f.svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "Fulfillment association already exists for Product p1, Warehouse MWH.001, and Store s1")
	f.fulfillments.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

// TestCreateFulfillment_Fail_ProductWarehouseLimit trips the two-warehouses-per-
// product-per-store constraint.
func TestCreateFulfillment_Fail_ProductWarehouseLimit(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p1", WarehouseBusinessUnit: "MWH.003", StoreID: "s1"}

	f.expectEntitiesExist("p1", "MWH.003", "s1")
	f.fulfillments.On("Exists", mock.Anything, "p1", "MWH.003", "s1").Return(false, nil)
	f.fulfillments.On("CountWarehousesForProductInStore", mock.Anything, "p1", "s1").Return(2, nil)
	// The warehouse already serves the store and already holds the product,
	// so the other two constraints stay quiet.
	f.fulfillments.On("ListByStore", mock.Anything, "s1").Return([]domain.Fulfillment{
		{ProductID: "p2", WarehouseBusinessUnit: "MWH.003", StoreID: "s1"},
	}, nil)
	f.fulfillments.On("ListByWarehouse", mock.Anything, "MWH.003").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.003", StoreID: "s2"},
	}, nil)

	_, err := f.svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "Constraint violations: ")
	assert.Contains(t, err.Error(), "Product p1 already has 2 warehouses fulfilling it for Store s1. Maximum allowed is 2")
	f.fulfillments.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

// TestCreateFulfillment_Fail_StoreWarehouseLimit trips the three-warehouses-per-
// store constraint when the warehouse is new for the store.
func TestCreateFulfillment_Fail_StoreWarehouseLimit(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p1", WarehouseBusinessUnit: "MWH.004", StoreID: "s1"}

	f.expectEntitiesExist("p1", "MWH.004", "s1")
	f.fulfillments.On("Exists", mock.Anything, "p1", "MWH.004", "s1").Return(false, nil)
	f.fulfillments.On("CountWarehousesForProductInStore", mock.Anything, "p1", "s1").Return(0, nil)
	f.fulfillments.On("ListByStore", mock.Anything, "s1").Return([]domain.Fulfillment{
		{ProductID: "p2", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
		{ProductID: "p3", WarehouseBusinessUnit: "MWH.002", StoreID: "s1"},
		{ProductID: "p4", WarehouseBusinessUnit: "MWH.003", StoreID: "s1"},
	}, nil)
	f.fulfillments.On("CountDistinctWarehousesForStore", mock.Anything, "s1").Return(3, nil)
	f.fulfillments.On("ListByWarehouse", mock.Anything, "MWH.004").Return([]domain.Fulfillment{}, nil)
	f.fulfillments.On("CountDistinctProductsInWarehouse", mock.Anything, "MWH.004").Return(0, nil)

	_, err := f.svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "Store s1 already has 3 different warehouses fulfilling it. Maximum allowed is 3")
}

// TestCreateFulfillment_Success_ExistingWarehouseForStore shows the store
// constraint not firing for a warehouse the store already uses, even at the
// distinct-warehouse limit.
func TestCreateFulfillment_Success_ExistingWarehouseForStore(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p5", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"}

	f.expectEntitiesExist("p5", "MWH.001", "s1")
	f.fulfillments.On("Exists", mock.Anything, "p5", "MWH.001", "s1").Return(false, nil)
	f.fulfillments.On("CountWarehousesForProductInStore", mock.Anything, "p5", "s1").Return(0, nil)
	f.fulfillments.On("ListByStore", mock.Anything, "s1").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
		{ProductID: "p2", WarehouseBusinessUnit: "MWH.002", StoreID: "s1"},
		{ProductID: "p3", WarehouseBusinessUnit: "MWH.003", StoreID: "s1"},
	}, nil)
	f.fulfillments.On("ListByWarehouse", mock.Anything, "MWH.001").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
	}, nil)
	f.fulfillments.On("CountDistinctProductsInWarehouse", mock.Anything, "MWH.001").Return(1, nil)
	f.fulfillments.On("Insert", mock.Anything, mock.Anything).
		Return(domain.Fulfillment{ProductID: "p5", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"}, nil)

	created, err := f.svc.Create(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, "MWH.001", created.WarehouseBusinessUnit)
	// The distinct-warehouse count never needed to run.
	f.fulfillments.AssertNotCalled(t, "CountDistinctWarehousesForStore", mock.Anything, mock.Anything)
}

// TestCreateFulfillment_Fail_WarehouseProductLimit trips the five-products-per-
// warehouse constraint when the product is new for the warehouse.
func TestCreateFulfillment_Fail_WarehouseProductLimit(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p6", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"}

	f.expectEntitiesExist("p6", "MWH.001", "s1")
	f.fulfillments.On("Exists", mock.Anything, "p6", "MWH.001", "s1").Return(false, nil)
	f.fulfillments.On("CountWarehousesForProductInStore", mock.Anything, "p6", "s1").Return(0, nil)
	f.fulfillments.On("ListByStore", mock.Anything, "s1").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
	}, nil)
	f.fulfillments.On("ListByWarehouse", mock.Anything, "MWH.001").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
	}, nil)
	f.fulfillments.On("CountDistinctProductsInWarehouse", mock.Anything, "MWH.001").Return(5, nil)

	_, err := f.svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "Warehouse MWH.001 already has 5 different products. Maximum allowed is 5")
}

// TestCreateFulfillment_Success_ExistingProductInFullWarehouse shows the
// warehouse constraint not firing for a product the warehouse already holds,
// even when the warehouse is at its distinct-product limit.
func TestCreateFulfillment_Success_ExistingProductInFullWarehouse(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s2"}

	f.expectEntitiesExist("p1", "MWH.001", "s2")
	f.fulfillments.On("Exists", mock.Anything, "p1", "MWH.001", "s2").Return(false, nil)
	f.fulfillments.On("CountWarehousesForProductInStore", mock.Anything, "p1", "s2").Return(0, nil)
	f.fulfillments.On("ListByStore", mock.Anything, "s2").Return([]domain.Fulfillment{
		{ProductID: "p2", WarehouseBusinessUnit: "MWH.001", StoreID: "s2"},
	}, nil)
	// The warehouse holds five products already, p1 among them.
	f.fulfillments.On("ListByWarehouse", mock.Anything, "MWH.001").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
		{ProductID: "p2", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
		{ProductID: "p3", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
		{ProductID: "p4", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
		{ProductID: "p5", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
	}, nil)
	f.fulfillments.On("Insert", mock.Anything, mock.Anything).
		Return(domain.Fulfillment{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s2"}, nil)

	created, err := f.svc.Create(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, "s2", created.StoreID)
	f.fulfillments.AssertNotCalled(t, "CountDistinctProductsInWarehouse", mock.Anything, mock.Anything)
}

// TestCreateFulfillment_Fail_MultipleViolations joins independent constraint
// violations into one message.
func TestCreateFulfillment_Fail_MultipleViolations(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p7", WarehouseBusinessUnit: "MWH.010", StoreID: "s1"}

	f.expectEntitiesExist("p7", "MWH.010", "s1")
	f.fulfillments.On("Exists", mock.Anything, "p7", "MWH.010", "s1").Return(false, nil)
	f.fulfillments.On("CountWarehousesForProductInStore", mock.Anything, "p7", "s1").Return(2, nil)
	f.fulfillments.On("ListByStore", mock.Anything, "s1").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
	}, nil)
	f.fulfillments.On("CountDistinctWarehousesForStore", mock.Anything, "s1").Return(3, nil)
	f.fulfillments.On("ListByWarehouse", mock.Anything, "MWH.010").Return([]domain.Fulfillment{}, nil)
	f.fulfillments.On("CountDistinctProductsInWarehouse", mock.Anything, "MWH.010").Return(5, nil)

	_, err := f.svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "Constraint violations: ")
	assert.Contains(t, err.Error(), "Product p7 already has 2 warehouses")
	assert.Contains(t, err.Error(), "Store s1 already has 3 different warehouses")
	assert.Contains(t, err.Error(), "Warehouse MWH.010 already has 5 different products")
	assert.Contains(t, err.Error(), "; ")
}

// TestDeleteFulfillment_Success removes an existing association.
func TestDeleteFulfillment_Success(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"}

	f.fulfillments.On("Exists", mock.Anything, "p1", "MWH.001", "s1").Return(true, nil)
	f.fulfillments.On("DeleteByKey", mock.Anything, "p1", "MWH.001", "s1").Return(nil)

	err := f.svc.Delete(context.Background(), req)

	assert.NoError(t, err)
	f.fulfillments.AssertExpectations(t)
}

// TestDeleteFulfillment_Fail_NotFound rejects deleting a triple that never existed.
func TestDeleteFulfillment_Fail_NotFound(t *testing.T) {
	f := newFixture()
	req := domain.FulfillmentRequest{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"}

	f.fulfillments.On("Exists", mock.Anything, "p1", "MWH.001", "s1").Return(false, nil)

	err := f.svc.Delete(context.Background(), req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	assert.Contains(t, err.Error(), "Fulfillment association does not exist for Product p1, Warehouse MWH.001, and Store s1")
	f.fulfillments.AssertNotCalled(t, "DeleteByKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestStoreStats_Success reports distinct warehouse usage against the limit.
func TestStoreStats_Success(t *testing.T) {
	f := newFixture()

	f.fulfillments.On("CountDistinctWarehousesForStore", mock.Anything, "s1").Return(3, nil)
	f.fulfillments.On("ListByStore", mock.Anything, "s1").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
		{ProductID: "p2", WarehouseBusinessUnit: "MWH.002", StoreID: "s1"},
		{ProductID: "p3", WarehouseBusinessUnit: "MWH.003", StoreID: "s1"},
		{ProductID: "p4", WarehouseBusinessUnit: "MWH.003", StoreID: "s1"},
	}, nil)

	stats, err := f.svc.StoreStats(context.Background(), "s1")

	assert.NoError(t, err)
	assert.Equal(t, "Store", stats.EntityType)
	assert.Equal(t, 3, stats.CurrentCount)
	assert.Equal(t, fulfillmentservice.MaxWarehousesPerStore, stats.MaxAllowed)
	assert.Equal(t, 4, stats.TotalFulfillments)
	assert.False(t, stats.HasCapacity)
}

// TestWarehouseStats_Success reports distinct product usage against the limit.
func TestWarehouseStats_Success(t *testing.T) {
	f := newFixture()

	f.fulfillments.On("CountDistinctProductsInWarehouse", mock.Anything, "MWH.001").Return(2, nil)
	f.fulfillments.On("ListByWarehouse", mock.Anything, "MWH.001").Return([]domain.Fulfillment{
		{ProductID: "p1", WarehouseBusinessUnit: "MWH.001", StoreID: "s1"},
		{ProductID: "p2", WarehouseBusinessUnit: "MWH.001", StoreID: "s2"},
	}, nil)

	stats, err := f.svc.WarehouseStats(context.Background(), "MWH.001")

	assert.NoError(t, err)
	assert.Equal(t, "Warehouse", stats.EntityType)
	assert.Equal(t, 2, stats.CurrentCount)
	assert.True(t, stats.HasCapacity)
}
