package storeservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
	"gofulfil/internal/service/storeservice"
)

// MockStoreRepository is a mock implementation of the StoreRepository interface.
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) Save(ctx context.Context, store domain.Store) (domain.Store, error) {
	args := m.Called(ctx, store)
	return args.Get(0).(domain.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id string) (domain.Store, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Store), args.Error(1)
}

func (m *MockStoreRepository) FindAll(ctx context.Context) ([]domain.Store, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *MockStoreRepository) Update(ctx context.Context, store domain.Store) (domain.Store, error) {
	args := m.Called(ctx, store)
	return args.Get(0).(domain.Store), args.Error(1)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLegacyNotifier is a mock implementation of the LegacyNotifier interface.
type MockLegacyNotifier struct {
	mock.Mock
}

func (m *MockLegacyNotifier) StoreCreated(store domain.Store) {
	m.Called(store)
}

func (m *MockLegacyNotifier) StoreUpdated(store domain.Store) {
	m.Called(store)
}

// recordingTxRunner mimics the real transaction manager's hook discipline:
// hooks registered during the function run only after it returns nil.
type recordingTxRunner struct {
	hooks []func()
}

func (r *recordingTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.hooks = nil
	if err := fn(ctx); err != nil {
		// Rolled back: registered hooks are discarded.
		r.hooks = nil
		return err
	}
	for _, hook := range r.hooks {
		hook()
	}
	return nil
}

func (r *recordingTxRunner) AfterCommit(ctx context.Context, action func()) error {
	r.hooks = append(r.hooks, action)
	return nil
}

func newStoreService(repo *MockStoreRepository, legacy *MockLegacyNotifier) *storeservice.Service {
	return storeservice.NewService(repo, legacy, &recordingTxRunner{}, logger.NewLogger("error"))
}

// TestCreateStore_Success_NotifiesLegacyAfterCommit persists the store and
// pushes the committed record to the legacy store manager.
func TestCreateStore_Success_NotifiesLegacyAfterCommit(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	mockLegacy := new(MockLegacyNotifier)
	svc := newStoreService(mockRepo, mockLegacy)

	input := domain.Store{Name: "Store Utrecht", QuantityProductsInStock: 120}
	saved := input
	saved.ID = uuid.New().String()

	mockRepo.On("Save", mock.Anything, input).Return(saved, nil)
	mockLegacy.On("StoreCreated", saved).Return()

	created, err := svc.Create(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, saved.ID, created.ID)
	mockRepo.AssertExpectations(t)
	mockLegacy.AssertExpectations(t)
}

// TestCreateStore_Fail_PresetID rejects a client-chosen id.
func TestCreateStore_Fail_PresetID(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	mockLegacy := new(MockLegacyNotifier)
	svc := newStoreService(mockRepo, mockLegacy)

	_, err := svc.Create(context.Background(), domain.Store{ID: "client-chosen", Name: "Store X"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "Id was invalidly set on request.")
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockLegacy.AssertNotCalled(t, "StoreCreated", mock.Anything)
}

// TestCreateStore_Fail_EmptyName rejects a blank store name.
func TestCreateStore_Fail_EmptyName(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	mockLegacy := new(MockLegacyNotifier)
	svc := newStoreService(mockRepo, mockLegacy)

	_, err := svc.Create(context.Background(), domain.Store{Name: "  "})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "Store Name was not set on request.")
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateStore_Fail_SaveError_NoLegacyNotification proves a failed save
// never reaches the legacy system: the hook of a rolled-back transaction is
// discarded.
func TestCreateStore_Fail_SaveError_NoLegacyNotification(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	mockLegacy := new(MockLegacyNotifier)
	svc := newStoreService(mockRepo, mockLegacy)

	input := domain.Store{Name: "Store Breda"}
	mockRepo.On("Save", mock.Anything, input).Return(domain.Store{}, errors.New("connection reset"))

	_, err := svc.Create(context.Background(), input)

	assert.Error(t, err)
	mockLegacy.AssertNotCalled(t, "StoreCreated", mock.Anything)
}

// TestUpdateStore_Success_NotifiesLegacyAfterCommit pushes the committed
// update to the legacy store manager.
func TestUpdateStore_Success_NotifiesLegacyAfterCommit(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	mockLegacy := new(MockLegacyNotifier)
	svc := newStoreService(mockRepo, mockLegacy)

	input := domain.Store{ID: "s1", Name: "Store Utrecht", QuantityProductsInStock: 80}

	mockRepo.On("Update", mock.Anything, input).Return(input, nil)
	mockLegacy.On("StoreUpdated", input).Return()

	updated, err := svc.Update(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, 80, updated.QuantityProductsInStock)
	mockRepo.AssertExpectations(t)
	mockLegacy.AssertExpectations(t)
}

// TestUpdateStore_Fail_NotFound_NoLegacyNotification keeps the legacy system
// out of failed updates.
func TestUpdateStore_Fail_NotFound_NoLegacyNotification(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	mockLegacy := new(MockLegacyNotifier)
	svc := newStoreService(mockRepo, mockLegacy)

	input := domain.Store{ID: "missing", Name: "Store Gone"}
	mockRepo.On("Update", mock.Anything, input).
		Return(domain.Store{}, apperror.NewNotFoundError("Store with ID missing not found"))

	_, err := svc.Update(context.Background(), input)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockLegacy.AssertNotCalled(t, "StoreUpdated", mock.Anything)
}

// TestDeleteStore_Success_NoLegacyNotification deletes without notifying.
func TestDeleteStore_Success_NoLegacyNotification(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	mockLegacy := new(MockLegacyNotifier)
	svc := newStoreService(mockRepo, mockLegacy)

	mockRepo.On("Delete", mock.Anything, "s1").Return(nil)

	err := svc.Delete(context.Background(), "s1")

	assert.NoError(t, err)
	mockLegacy.AssertNotCalled(t, "StoreCreated", mock.Anything)
	mockLegacy.AssertNotCalled(t, "StoreUpdated", mock.Anything)
}

// TestListStores_Success returns everything the repository holds.
func TestListStores_Success(t *testing.T) {
	mockRepo := new(MockStoreRepository)
	mockLegacy := new(MockLegacyNotifier)
	svc := newStoreService(mockRepo, mockLegacy)

	expected := []domain.Store{{ID: "s1", Name: "A"}, {ID: "s2", Name: "B"}}
	mockRepo.On("FindAll", mock.Anything).Return(expected, nil)

	stores, err := svc.List(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, stores)
}
