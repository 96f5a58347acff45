package storeservice

import (
	"context"
	"strings"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// StoreRepository defines the persistence contract for stores.
type StoreRepository interface {
	Save(ctx context.Context, store domain.Store) (domain.Store, error)
	FindByID(ctx context.Context, id string) (domain.Store, error)
	FindAll(ctx context.Context) ([]domain.Store, error)
	Update(ctx context.Context, store domain.Store) (domain.Store, error)
	Delete(ctx context.Context, id string) error
}

// LegacyNotifier is the legacy store manager collaborator. It is only ever
// invoked from a post-commit hook.
type LegacyNotifier interface {
	StoreCreated(store domain.Store)
	StoreUpdated(store domain.Store)
}

// TxRunner runs a mutation inside one transaction scope and lets the service
// schedule actions for after a successful commit. Hooks of a rolled-back
// transaction never run.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	AfterCommit(ctx context.Context, action func()) error
}

// Service implements the store use cases. Stores carry no business
// constraints of their own, but their mutations must reach the legacy
// store manager strictly after the database commit.
type Service struct {
	repo   StoreRepository
	legacy LegacyNotifier
	tx     TxRunner
	logger logger.Logger
}

// NewService creates and returns a new store service.
func NewService(repo StoreRepository, legacy LegacyNotifier, tx TxRunner, logger logger.Logger) *Service {
	return &Service{repo: repo, legacy: legacy, tx: tx, logger: logger}
}

// Create persists a new store and schedules the legacy notification for
// after the commit.
func (s *Service) Create(ctx domain.Context, store domain.Store) (domain.Store, error) {
	s.logger.Debug("Creating store.", map[string]interface{}{"name": store.Name})

	if store.ID != "" {
		return domain.Store{}, apperror.NewValidationError("Id was invalidly set on request.")
	}
	if strings.TrimSpace(store.Name) == "" {
		return domain.Store{}, apperror.NewValidationError("Store Name was not set on request.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Create", nil)
	}

	var created domain.Store
	err := s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Save(txCtx, store)
		if err != nil {
			return err
		}

		// The legacy system may only learn about the store once it is
		// committed; a rollback silently discards the hook.
		notify := created
		return s.tx.AfterCommit(txCtx, func() {
			s.legacy.StoreCreated(notify)
		})
	})
	if err != nil {
		return domain.Store{}, err
	}

	s.logger.Info("Store created.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// Update overwrites a store and schedules the legacy notification for
// after the commit.
func (s *Service) Update(ctx domain.Context, store domain.Store) (domain.Store, error) {
	s.logger.Debug("Updating store.", map[string]interface{}{"id": store.ID})

	if strings.TrimSpace(store.Name) == "" {
		return domain.Store{}, apperror.NewValidationError("Store Name was not set on request.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Update", nil)
	}

	var updated domain.Store
	err := s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		var err error
		updated, err = s.repo.Update(txCtx, store)
		if err != nil {
			return err
		}

		notify := updated
		return s.tx.AfterCommit(txCtx, func() {
			s.legacy.StoreUpdated(notify)
		})
	})
	if err != nil {
		return domain.Store{}, err
	}

	s.logger.Info("Store updated.", map[string]interface{}{"id": updated.ID})
	return updated, nil
}

// GetByID fetches a store by id.
func (s *Service) GetByID(ctx domain.Context, id string) (domain.Store, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for GetByID", nil)
	}

	return s.repo.FindByID(ctxGo, id)
}

// List returns every store.
func (s *Service) List(ctx domain.Context) ([]domain.Store, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for List", nil)
	}

	return s.repo.FindAll(ctxGo)
}

// Delete removes a store. The legacy system is not notified about deletions.
func (s *Service) Delete(ctx domain.Context, id string) error {
	s.logger.Debug("Deleting store.", map[string]interface{}{"id": id})

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Delete", nil)
	}

	return s.tx.WithinTransaction(ctxGo, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}
