package repository

import (
	"context"

	"LittleLemon/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct{ DB *gorm.DB }

func NewCartRepository(db *gorm.DB) *CartRepository { return &CartRepository{DB: db} }

func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository { return &CartRepository{DB: tx} }

// LockOwner takes a row lock on the user so that cart writes for the same user
// are serialized until the surrounding transaction ends.
func (r *CartRepository) LockOwner(ctx context.Context, userID uint) error {
	var u models.User
	return r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&u, userID).Error
}

func (r *CartRepository) FindLine(ctx context.Context, userID, menuItemID uint) (*models.CartLine, error) {
	var line models.CartLine
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *CartRepository) ListLines(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("MenuItem").
		Order("id").
		Find(&lines).Error
	return lines, err
}

func (r *CartRepository) CreateLine(ctx context.Context, line *models.CartLine) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

// UpdateLine writes back quantity and price; the unit price is never rewritten.
func (r *CartRepository) UpdateLine(ctx context.Context, line *models.CartLine) error {
	return r.DB.WithContext(ctx).
		Model(line).
		Select("Quantity", "Price", "UpdatedAt").
		Updates(line).Error
}

// DeleteLines removes the given lines of a user and reports how many went away.
func (r *CartRepository) DeleteLines(ctx context.Context, userID uint, ids []uint) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.CartLine{})
	return result.RowsAffected, result.Error
}

func (r *CartRepository) Clear(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{}).Error
}
