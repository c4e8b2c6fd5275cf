package postgres

import (
	"context"
	goerrors "errors"

	errors "github.com/frahmantamala/shopping-list/internal"
	listItemDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/listitem"
	"github.com/frahmantamala/shopping-list/internal/listitem"
	"gorm.io/gorm"
)

// ItemRepository implements listitem.Repository and list.ItemStore.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *listitem.Item) error {
	return r.db.WithContext(ctx).Create(listitem.ToDataModel(item)).Error
}

func (r *ItemRepository) GetByID(ctx context.Context, listID, itemID string) (*listitem.Item, error) {
	var m listItemDatamodel.ListItem
	err := r.db.WithContext(ctx).Where("id = ? AND list_id = ?", itemID, listID).First(&m).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrItemNotFound
		}
		return nil, err
	}
	return listitem.FromDataModel(&m), nil
}

// Save writes every column, including a cleared checked_at.
func (r *ItemRepository) Save(ctx context.Context, item *listitem.Item) error {
	return r.db.WithContext(ctx).Save(listitem.ToDataModel(item)).Error
}

func (r *ItemRepository) Delete(ctx context.Context, listID, itemID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND list_id = ?", itemID, listID).
		Delete(&listItemDatamodel.ListItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) ListByListID(ctx context.Context, listID string) ([]*listitem.Item, error) {
	var models []*listItemDatamodel.ListItem
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("category_main ASC, custom_order ASC, added_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	items := make([]*listitem.Item, 0, len(models))
	for _, m := range models {
		items = append(items, listitem.FromDataModel(m))
	}
	return items, nil
}

func (r *ItemRepository) CountByListID(ctx context.Context, listID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&listItemDatamodel.ListItem{}).
		Where("list_id = ?", listID).
		Count(&count).Error
	return count, err
}

// UncheckAll resets every checked item of the list in one statement and
// returns how many were reset.
func (r *ItemRepository) UncheckAll(ctx context.Context, listID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&listItemDatamodel.ListItem{}).
		Where("list_id = ? AND is_checked = ?", listID, true).
		Updates(map[string]interface{}{"is_checked": false, "checked_at": nil})
	return res.RowsAffected, res.Error
}

func (r *ItemRepository) DeleteByListID(ctx context.Context, listID string) error {
	return r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Delete(&listItemDatamodel.ListItem{}).Error
}
