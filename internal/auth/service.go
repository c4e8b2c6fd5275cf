package auth

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error) {
	dto = dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, dto.Email); err == nil {
		return nil, errors.ErrEmailExists
	} else if !errors.IsType(err, errors.ErrorTypeNotFound) {
		s.logger.Error("failed to check existing email", "error", err)
		return nil, errors.WrapStorage(err)
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	now := time.Now().UTC()
	account := &Account{
		ID:           uuid.NewString(),
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		IsActive:     true,
		LastLogin:    &now,
		CreatedAt:    now,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		s.logger.Error("failed to create account", "error", err, "email", dto.Email)
		return nil, errors.WrapStorage(err)
	}

	s.logger.Info("account registered", "user_id", account.ID)
	return s.issue(ctx, account)
}

// Login validates credentials and returns tokens
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	account, err := s.repo.GetByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, errors.WrapStorage(err)
	}
	if !account.IsActive {
		return nil, errors.ErrInvalidCredentials
	}
	if err := VerifyPassword(account.PasswordHash, dto.Password); err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn("failed to update last login", "error", err, "user_id", account.ID)
	} else {
		account.LastLogin = &now
	}

	return s.issue(ctx, account)
}

func (s *Service) issue(ctx context.Context, account *Account) (*AuthResponse, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, errors.NewInternalError("failed to generate access token", err)
	}
	refreshToken, expiresAt, err := s.tokenGenerator.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, errors.NewInternalError("failed to generate refresh token", err)
	}
	if err := s.repo.StoreRefreshToken(ctx, account.ID, refreshToken, expiresAt, MaxRefreshTokens); err != nil {
		s.logger.Error("failed to store refresh token", "error", err, "user_id", account.ID)
		return nil, errors.WrapStorage(err)
	}

	return &AuthResponse{
		User: account.View(),
		AuthTokens: AuthTokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

// Refresh issues a new access token for a stored, valid refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	if err := (RefreshTokenDTO{RefreshToken: refreshToken}).Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return nil, errors.ErrInvalidToken
		}
		return nil, errors.WrapStorage(err)
	}

	known, err := s.repo.HasRefreshToken(ctx, account.ID, refreshToken)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	if !known {
		s.logger.Warn("refresh token not on record", "user_id", account.ID)
		return nil, errors.ErrInvalidToken
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, errors.NewInternalError("failed to generate access token", err)
	}
	return &AuthTokens{AccessToken: accessToken}, nil
}

func (s *Service) Logout(ctx context.Context, userID, refreshToken string) error {
	if err := (RefreshTokenDTO{RefreshToken: refreshToken}).Validate(); err != nil {
		return err
	}
	if err := s.repo.DeleteRefreshToken(ctx, userID, refreshToken); err != nil {
		s.logger.Error("failed to revoke refresh token", "error", err, "user_id", userID)
		return errors.WrapStorage(err)
	}
	return nil
}

func (s *Service) Me(ctx context.Context, userID string) (*Account, error) {
	account, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.WrapStorage(err)
	}
	return account, nil
}

// Authenticate turns an access token into the principal for the request.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return nil, errors.ErrInvalidToken
		}
		return nil, errors.WrapStorage(err)
	}
	if !account.IsActive {
		return nil, errors.ErrInvalidToken
	}
	return &Principal{ID: account.ID, Email: account.Email, Name: account.Name}, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
