package postgres

import (
	"context"
	goerrors "errors"
	"strings"
	"time"

	errors "github.com/frahmantamala/shopping-list/internal"
	userDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/user"
	"github.com/frahmantamala/shopping-list/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*user.Profile, error) {
	var m userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&m).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&m), nil
}

func (r *Repository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) Search(ctx context.Context, query, excludeID string, limit int) ([]user.Summary, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var models []userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern).
		Where("id <> ? AND is_active = ?", excludeID, true).
		Order("name ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return summaries(models), nil
}

func (r *Repository) ListContacts(ctx context.Context, userID string) ([]user.Summary, error) {
	db := r.db.WithContext(ctx)
	contactIDs := db.Model(&userDatamodel.Contact{}).Select("contact_id").Where("user_id = ?", userID)

	var models []userDatamodel.User
	if err := db.Where("id IN (?)", contactIDs).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return summaries(models), nil
}

func (r *Repository) AddContact(ctx context.Context, userID, contactID string) error {
	err := r.db.WithContext(ctx).Create(&userDatamodel.Contact{
		UserID:    userID,
		ContactID: contactID,
		CreatedAt: time.Now().UTC(),
	}).Error
	if goerrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrContactExists
	}
	return err
}

func (r *Repository) RemoveContact(ctx context.Context, userID, contactID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Delete(&userDatamodel.Contact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrContactNotFound
	}
	return nil
}

// DisplayNames returns id to name for the ids that exist; unknown ids are
// left out of the map.
func (r *Repository) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []userDatamodel.User
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	for _, m := range models {
		out[m.ID] = m.Name
	}
	return out, nil
}

func summaries(models []userDatamodel.User) []user.Summary {
	out := make([]user.Summary, 0, len(models))
	for i := range models {
		out = append(out, user.SummaryFromDataModel(&models[i]))
	}
	return out
}
