package postgres

import (
	"context"
	goerrors "errors"

	errors "github.com/frahmantamala/shopping-list/internal"
	listDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/list"
	"github.com/frahmantamala/shopping-list/internal/list"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListRepository implements list.Repository using GORM
type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Shares", func(tx *gorm.DB) *gorm.DB { return tx.Order("joined_at ASC") }).
		Preload("History", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC, timestamp ASC") })
}

func (r *ListRepository) Create(ctx context.Context, l *list.List) error {
	return r.db.WithContext(ctx).Create(list.ToDataModel(l)).Error
}

func (r *ListRepository) GetByID(ctx context.Context, id string) (*list.List, error) {
	var m listDatamodel.List
	err := withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&m).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrListNotFound
		}
		return nil, err
	}
	return list.FromDataModel(&m), nil
}

// Save writes the list row, replaces its share rows and appends history rows
// that are not stored yet.
func (r *ListRepository) Save(ctx context.Context, l *list.List) error {
	m := list.ToDataModel(l)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Omit(clause.Associations).Save(m)
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("list_id = ?", m.ID).Delete(&listDatamodel.ListShare{}).Error; err != nil {
			return err
		}
		if len(m.Shares) > 0 {
			if err := tx.Create(&m.Shares).Error; err != nil {
				return err
			}
		}
		if len(m.History) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&m.History).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ListRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&listDatamodel.ListShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&listDatamodel.ListHistory{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&listDatamodel.List{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrListNotFound
		}
		return nil
	})
}

func (r *ListRepository) ListByOwner(ctx context.Context, ownerID string) ([]*list.List, error) {
	var models []*listDatamodel.List
	err := withRelations(r.db.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Order("last_modified DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return list.FromDataModelSlice(models), nil
}

func (r *ListRepository) ListSharedWith(ctx context.Context, userID string) ([]*list.List, error) {
	db := r.db.WithContext(ctx)
	sharedIDs := db.Model(&listDatamodel.ListShare{}).Select("list_id").Where("user_id = ?", userID)

	var models []*listDatamodel.List
	err := withRelations(db).
		Where("id IN (?)", sharedIDs).
		Order("last_modified DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return list.FromDataModelSlice(models), nil
}
