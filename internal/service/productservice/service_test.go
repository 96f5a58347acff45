package productservice_test

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
	"gofulfil/internal/service/productservice"
)

// MockProductRepository is a mock implementation of the ProductRepository interface.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestCreateProduct_Success persists a valid product.
func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	input := domain.Product{Name: "Cordless Drill", Price: 79.90}
	saved := input
	saved.ID = uuid.New().String()

	mockRepo.On("Save", mock.Anything, input).Return(saved, nil)

	created, err := svc.Create(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, saved.ID, created.ID)
	mockRepo.AssertExpectations(t)
}

// TestCreateProduct_Fail_EmptyName rejects a blank name before touching the repo.
func TestCreateProduct_Fail_EmptyName(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	_, err := svc.Create(context.Background(), domain.Product{Name: "   ", Price: 10})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateProduct_Fail_NegativePrice rejects a negative price.
func TestCreateProduct_Fail_NegativePrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	_, err := svc.Create(context.Background(), domain.Product{Name: "Drill", Price: -1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestListProducts_Success passes the filter through to the repository.
func TestListProducts_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	filter := domain.ProductFilter{Page: 2, Limit: 10, Name: "drill"}
	expected := []domain.Product{{ID: "p1", Name: "Cordless Drill"}}

	mockRepo.On("FindAll", mock.Anything, filter).Return(expected, nil)

	products, err := svc.List(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

// TestGetProductByID_Fail_NotFound propagates the repository error.
func TestGetProductByID_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	mockRepo.On("FindByID", mock.Anything, "missing").
		Return(domain.Product{}, apperror.NewNotFoundError("Product with ID missing not found"))

	_, err := svc.GetByID(context.Background(), "missing")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestDeleteProduct_Fail_RepoError propagates unexpected repository failures.
func TestDeleteProduct_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	mockRepo.On("Delete", mock.Anything, "p1").Return(errors.New("connection reset"))

	err := svc.Delete(context.Background(), "p1")

	assert.Error(t, err)
}
