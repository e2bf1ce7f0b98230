package repository

import (
	"context"

	"LittleLemon/models"

	"gorm.io/gorm"
)

type CategoryRepository struct{ DB *gorm.DB }

func NewCategoryRepository(db *gorm.DB) *CategoryRepository { return &CategoryRepository{DB: db} }

func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: tx}
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.WithContext(ctx).Order("id").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) FindByTitle(ctx context.Context, title string) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("title = ?", title).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Taken reports whether another category already uses title or slug.
func (r *CategoryRepository) Taken(ctx context.Context, title, slug string, exceptID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.Category{}).
		Where("(title = ? OR slug = ?) AND id <> ?", title, slug, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepository) Save(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.DB.WithContext(ctx).Delete(&models.Category{}, id)
	return result.RowsAffected, result.Error
}
