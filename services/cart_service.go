package services

import (
	"context"
	"errors"
	"fmt"

	"LittleLemon/metrics"
	"LittleLemon/models"
	"LittleLemon/pricing"
	"LittleLemon/repository"

	"gorm.io/gorm"
)

type CartService struct {
	DB       *gorm.DB
	CartRepo *repository.CartRepository
	MenuRepo *repository.MenuRepository
}

func NewCartService(db *gorm.DB, cr *repository.CartRepository, mr *repository.MenuRepository) *CartService {
	return &CartService{DB: db, CartRepo: cr, MenuRepo: mr}
}

type AddToCartIn struct {
	MenuItemID uint `json:"menuitem_id" form:"menuitem_id"`
	Quantity   *int `json:"quantity" form:"quantity"`
}

// AddItem puts quantity units of a menu item into the user's cart. A second add
// for the same menu item merges into the existing line at the unit price frozen
// on the first add. created is false when an existing line was updated.
func (s *CartService) AddItem(ctx context.Context, userID uint, in AddToCartIn) (*models.CartLine, bool, error) {
	if in.MenuItemID == 0 {
		return nil, false, validationError("'menuitem_id' is missing from request body")
	}
	if in.Quantity == nil {
		return nil, false, validationError("'quantity' is missing from request body")
	}
	quantity := *in.Quantity
	if err := pricing.CheckQuantity(quantity); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var (
		line    *models.CartLine
		created bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.CartRepo.WithTx(tx)
		if err := carts.LockOwner(ctx, userID); err != nil {
			return notFound(err, ErrUserNotFound, userID)
		}

		item, err := s.MenuRepo.WithTx(tx).MenuItemByID(ctx, in.MenuItemID)
		if err != nil {
			return notFound(err, ErrMenuItemNotFound, in.MenuItemID)
		}

		existing, err := carts.FindLine(ctx, userID, item.ID)
		switch {
		case err == nil:
			//merge at the unit price frozen on the first add
			merged := existing.Quantity + quantity
			if err := pricing.CheckQuantity(merged); err != nil {
				return fmt.Errorf("%w: merged %w", ErrValidation, err)
			}
			increment, err := pricing.ComputeLinePrice(quantity, existing.UnitPrice)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrValidation, err)
			}
			price := existing.Price.Add(increment)
			if err := pricing.CheckAmount(price); err != nil {
				return fmt.Errorf("%w: merged %w", ErrValidation, err)
			}
			existing.Quantity = merged
			existing.Price = price
			if err := carts.UpdateLine(ctx, existing); err != nil {
				return err
			}
			line = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			price, err := pricing.ComputeLinePrice(quantity, item.Price)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrValidation, err)
			}
			line = &models.CartLine{
				UserID:     userID,
				MenuItemID: item.ID,
				Quantity:   quantity,
				UnitPrice:  item.Price,
				Price:      price,
			}
			if err := carts.CreateLine(ctx, line); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%w: cart line for menu item %d already exists", ErrConflict, item.ID)
				}
				return err
			}
			created = true
		default:
			return err
		}

		line.MenuItem = *item
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	metrics.RecordCartAddition(created)
	return line, created, nil
}

// ListItems returns the caller's own cart lines in insertion order.
func (s *CartService) ListItems(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return s.CartRepo.ListLines(ctx, userID)
}

// Clear empties the user's cart. Clearing an empty cart is not an error.
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.CartRepo.Clear(ctx, userID)
}
