package operatorservice

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// OperatorRepository defines the persistence contract for operator accounts.
type OperatorRepository interface {
	Save(ctx context.Context, operator domain.Operator) (domain.Operator, error)
	FindByEmail(ctx context.Context, email string) (domain.Operator, error)
}

// TokenService issues signed tokens for authenticated operators.
type TokenService interface {
	GenerateToken(operatorID string, role string) (string, error)
}

// Service implements registration and login for operator accounts.
type Service struct {
	repo   OperatorRepository
	tokens TokenService
	logger logger.Logger
}

// NewService creates and returns a new operator service.
func NewService(repo OperatorRepository, tokens TokenService, logger logger.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// Register creates a new operator account with a bcrypt-hashed password.
func (s *Service) Register(ctx domain.Context, registration domain.OperatorRegistration) (domain.Operator, error) {
	s.logger.Debug("Registering operator.", map[string]interface{}{"email": registration.Email})

	if !strings.Contains(registration.Email, "@") {
		return domain.Operator{}, apperror.NewValidationError("A valid email address is required.")
	}
	if len(registration.Password) < 8 {
		return domain.Operator{}, apperror.NewValidationError("Password must have at least 8 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Operator{}, apperror.NewInternalError("Failed to hash password.", err)
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Register", nil)
	}

	created, err := s.repo.Save(ctxGo, domain.Operator{
		Email:        registration.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleOperator,
	})
	if err != nil {
		return domain.Operator{}, err
	}

	s.logger.Info("Operator registered.", map[string]interface{}{"id": created.ID, "email": created.Email})
	return created, nil
}

// Login verifies the credentials and returns a signed token.
func (s *Service) Login(ctx domain.Context, email, password string) (string, error) {
	s.logger.Debug("Operator login attempt.", map[string]interface{}{"email": email})

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Invalid domain context, using context.Background() for Login", nil)
	}

	operator, err := s.repo.FindByEmail(ctxGo, email)
	if err != nil {
		// Never leak whether the account exists.
		return "", apperror.NewUnauthorizedError("Invalid email or password.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Operator login failed: wrong password.", map[string]interface{}{"email": email})
		return "", apperror.NewUnauthorizedError("Invalid email or password.")
	}

	tokenString, err := s.tokens.GenerateToken(operator.ID, string(operator.Role))
	if err != nil {
		return "", apperror.NewInternalError("Failed to issue token.", err)
	}

	s.logger.Info("Operator logged in.", map[string]interface{}{"id": operator.ID})
	return tokenString, nil
}
