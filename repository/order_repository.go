package repository

import (
	"context"

	"LittleLemon/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct{ DB *gorm.DB }

func NewOrderRepository(db *gorm.DB) *OrderRepository { return &OrderRepository{DB: db} }

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository { return &OrderRepository{DB: tx} }

// Create inserts the order header and then its items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	db := r.DB.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(o).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = o.ID
	}
	if err := db.Omit(clause.Associations).Create(&items).Error; err != nil {
		return err
	}
	o.OrderItems = items
	return nil
}

func (r *OrderRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *OrderRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("DeliveryCrew").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("OrderItems.MenuItem")
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.withDetails(r.DB.WithContext(ctx)).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// FindForUpdate reads the order header under a row lock.
func (r *OrderRepository) FindForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	var orders []models.Order
	db := r.withDetails(r.DB.WithContext(ctx))
	if query != "" {
		db = db.Where(query, args...)
	}
	err := db.Order("id").Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, "")
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *OrderRepository) ListByDeliveryCrew(ctx context.Context, crewID uint) ([]models.Order, error) {
	return r.list(ctx, "delivery_crew_id = ?", crewID)
}

func (r *OrderRepository) SetDeliveryCrew(ctx context.Context, id, crewID uint) error {
	return r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("delivery_crew_id", crewID).Error
}

func (r *OrderRepository) SetStatus(ctx context.Context, id uint, status bool) error {
	return r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes an order together with its items.
func (r *OrderRepository) Delete(ctx context.Context, id uint) (int64, error) {
	db := r.DB.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return 0, err
	}
	result := db.Delete(&models.Order{}, id)
	return result.RowsAffected, result.Error
}
