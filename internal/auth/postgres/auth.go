package postgres

import (
	"context"
	goerrors "errors"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/auth"
	userDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateAccount(ctx context.Context, a *auth.Account) error {
	m := &userDatamodel.User{
		ID:                   a.ID,
		Email:                a.Email,
		Name:                 a.Name,
		PasswordHash:         a.PasswordHash,
		Language:             "en",
		Theme:                "system",
		NotificationsEnabled: true,
		IsActive:             a.IsActive,
		LastLogin:            a.LastLogin,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrEmailExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*auth.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) first(ctx context.Context, query string, arg interface{}) (*auth.Account, error) {
	var m userDatamodel.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Account{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		LastLogin:    m.LastLogin,
		CreatedAt:    m.CreatedAt,
	}, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"last_login": at, "updated_at": at}).Error
}

// StoreRefreshToken saves token and trims the user's tokens to the newest keep.
func (r *Repository) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time, keep int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rt := &userDatamodel.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    userID,
			Token:     token,
			CreatedAt: time.Now().UTC(),
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(rt).Error; err != nil {
			return err
		}

		if keep <= 0 {
			return nil
		}
		var stale []string
		err := tx.Model(&userDatamodel.RefreshToken{}).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Offset(keep).
			Pluck("id", &stale).Error
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		return tx.Where("id IN ?", stale).Delete(&userDatamodel.RefreshToken{}).Error
	})
}

func (r *Repository) HasRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.RefreshToken{}).
		Where("user_id = ? AND token = ? AND expires_at > ?", userID, token, time.Now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) DeleteRefreshToken(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&userDatamodel.RefreshToken{}).Error
}
