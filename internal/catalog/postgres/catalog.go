package postgres

import (
	"context"
	goerrors "errors"
	"strings"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	catalogDatamodel "github.com/frahmantamala/shopping-list/internal/core/datamodel/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func withPrices(db *gorm.DB) *gorm.DB {
	return db.Preload("PriceHistory", func(tx *gorm.DB) *gorm.DB { return tx.Order("date ASC") })
}

func (r *ProductRepository) Search(ctx context.Context, q catalog.SearchQuery) ([]*catalog.Product, int64, error) {
	db := r.db.WithContext(ctx).Model(&catalogDatamodel.Product{})
	if q.Query != "" {
		pattern := "%" + strings.ToLower(q.Query) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(barcode) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern, pattern)
	}
	if q.Category != "" {
		db = db.Where("category_main = ?", q.Category)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*catalogDatamodel.Product
	err := withPrices(db).
		Order("popularity DESC").
		Order("name ASC").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	products := make([]*catalog.Product, 0, len(models))
	for _, m := range models {
		products = append(products, catalog.FromDataModel(m))
	}
	return products, total, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	return r.first(ctx, "barcode = ?", barcode)
}

func (r *ProductRepository) first(ctx context.Context, query string, arg interface{}) (*catalog.Product, error) {
	var m catalogDatamodel.Product
	if err := withPrices(r.db.WithContext(ctx)).Where(query, arg).First(&m).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProductNotFound
		}
		return nil, err
	}
	return catalog.FromDataModel(&m), nil
}

func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	err := r.db.WithContext(ctx).Create(catalog.ToDataModel(p)).Error
	if goerrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrBarcodeExists
	}
	return err
}

func (r *ProductRepository) IncrementPopularity(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&catalogDatamodel.Product{}).
		Where("id = ?", id).
		UpdateColumn("popularity", gorm.Expr("popularity + 1")).Error
}

// AddPrice stores the new current price and appends point to the history.
func (r *ProductRepository) AddPrice(ctx context.Context, p *catalog.Product, point catalog.PricePoint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&catalogDatamodel.Product{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{"price": point.Price, "updated_at": p.UpdatedAt}).Error
		if err != nil {
			return err
		}
		row := catalog.PriceToDataModel(p.ID, point)
		return tx.Create(&row).Error
	})
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) TopLevel(ctx context.Context) ([]*catalog.Category, error) {
	return r.find(r.db.WithContext(ctx).Where("parent_code IS NULL"))
}

func (r *CategoryRepository) Children(ctx context.Context, code string) ([]*catalog.Category, error) {
	return r.find(r.db.WithContext(ctx).Where("parent_code = ?", code))
}

func (r *CategoryRepository) find(db *gorm.DB) ([]*catalog.Category, error) {
	var models []*catalogDatamodel.Category
	if err := db.Order("custom_order ASC, name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	cats := make([]*catalog.Category, 0, len(models))
	for _, m := range models {
		cats = append(cats, catalog.CategoryFromDataModel(m))
	}
	return cats, nil
}

func (r *CategoryRepository) GetByCode(ctx context.Context, code string) (*catalog.Category, error) {
	var m catalogDatamodel.Category
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&m).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, err
	}
	return catalog.CategoryFromDataModel(&m), nil
}

// Create upserts by code so seeding can run repeatedly.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(catalog.CategoryToDataModel(c)).Error
}
