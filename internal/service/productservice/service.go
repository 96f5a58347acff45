package productservice

import (
	"context"
	"strings"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// ProductRepository defines the persistence contract for products.
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Service implements the product use cases. Products carry no fulfilment
// constraints; the engine only needs their identity.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService creates and returns a new product service.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) validate(product domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return apperror.NewValidationError("Product name must not be empty.")
	}
	if product.Price < 0 {
		return apperror.NewValidationError("Product price must not be negative.")
	}
	return nil
}

// Create persists a new product after validation.
func (s *Service) Create(ctx domain.Context, product domain.Product) (domain.Product, error) {
	s.logger.Debug("Creating product.", map[string]interface{}{"name": product.Name})

	if err := s.validate(product); err != nil {
		return domain.Product{}, err
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Create", nil)
	}

	created, err := s.repo.Save(ctxGo, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Product created.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// GetByID fetches a product by id.
func (s *Service) GetByID(ctx domain.Context, id string) (domain.Product, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for GetByID", nil)
	}

	return s.repo.FindByID(ctxGo, id)
}

// List returns products matching the filter.
func (s *Service) List(ctx domain.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for List", nil)
	}

	return s.repo.FindAll(ctxGo, filter)
}

// Update overwrites a product after validation.
func (s *Service) Update(ctx domain.Context, product domain.Product) (domain.Product, error) {
	s.logger.Debug("Updating product.", map[string]interface{}{"id": product.ID})

	if err := s.validate(product); err != nil {
		return domain.Product{}, err
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Update", nil)
	}

	return s.repo.Update(ctxGo, product)
}

// Delete removes a product.
func (s *Service) Delete(ctx domain.Context, id string) error {
	s.logger.Debug("Deleting product.", map[string]interface{}{"id": id})

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Delete", nil)
	}

	return s.repo.Delete(ctxGo, id)
}
