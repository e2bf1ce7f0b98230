package repository

import (
	"context"

	"LittleLemon/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuRepository struct{ DB *gorm.DB }

func NewMenuRepository(db *gorm.DB) *MenuRepository { return &MenuRepository{DB: db} }

func (r *MenuRepository) WithTx(tx *gorm.DB) *MenuRepository { return &MenuRepository{DB: tx} }

func (r *MenuRepository) MenuItemByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.DB.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

type MenuFilter struct {
	Category string
	Offset   int
	Limit    int
}

// ListMenuItems returns one page of menu items and the number of items matching the filter.
func (r *MenuRepository) ListMenuItems(ctx context.Context, f MenuFilter) ([]models.MenuItem, int64, error) {
	db := r.DB.WithContext(ctx).Model(&models.MenuItem{})
	if f.Category != "" {
		db = db.
			Joins("JOIN categories ON categories.id = menu_items.category_id").
			Where("categories.title = ?", f.Category)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.MenuItem
	q := db.Preload("Category").Order("menu_items.id").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MenuRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *MenuRepository) SaveMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

// DeleteMenuItem removes the item together with any cart lines holding it.
// Call it inside a transaction.
func (r *MenuRepository) DeleteMenuItem(ctx context.Context, id uint) (int64, error) {
	db := r.DB.WithContext(ctx)
	if err := db.Where("menu_item_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
		return 0, err
	}
	result := db.Delete(&models.MenuItem{}, id)
	return result.RowsAffected, result.Error
}

// Ordered reports whether any order item references the menu item.
func (r *MenuRepository) Ordered(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *MenuRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.MenuItem{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
