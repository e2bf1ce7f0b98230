package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/pricing"
	"LittleLemon/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// MenuCache keeps the full menu ordered by id so that unfiltered pages can be
// served without touching the database.
type MenuCache interface {
	// Page returns items [offset, offset+limit) and the number of cached items.
	// A total of zero means the cache is cold.
	Page(ctx context.Context, offset, limit int) ([]models.MenuItem, int64, error)
	Fill(ctx context.Context, items []models.MenuItem) error
	// Put adds or replaces one item. It does nothing while the cache is cold.
	Put(ctx context.Context, item models.MenuItem) error
	Remove(ctx context.Context, id uint) error
	Invalidate(ctx context.Context) error
}

type MenuService struct {
	DB         *gorm.DB
	Menu       *repository.MenuRepository
	Categories *repository.CategoryRepository
	Cache      MenuCache
}

func NewMenuService(db *gorm.DB, menu *repository.MenuRepository, categories *repository.CategoryRepository, cache MenuCache) *MenuService {
	return &MenuService{DB: db, Menu: menu, Categories: categories, Cache: cache}
}

// MenuItemIn is the body of a menu item create or update. Nil fields are left alone on update.
type MenuItemIn struct {
	Title      *string          `json:"title"`
	Price      *decimal.Decimal `json:"price"`
	Featured   *bool            `json:"featured"`
	CategoryID *uint            `json:"category_id"`
}

type MenuPage struct {
	Items  []models.MenuItem
	Total  int64
	Offset int
	Limit  int
}

// ClampPage applies the default page size and the upper bound on limit.
func ClampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return offset, limit
}

// List returns one page of the menu. Unfiltered pages come from the cache,
// which is rebuilt from the database when it is cold or unreachable.
func (s *MenuService) List(ctx context.Context, f repository.MenuFilter) (MenuPage, error) {
	f.Offset, f.Limit = ClampPage(f.Offset, f.Limit)
	page := MenuPage{Offset: f.Offset, Limit: f.Limit}

	if f.Category != "" || s.Cache == nil {
		items, total, err := s.Menu.ListMenuItems(ctx, f)
		if err != nil {
			return page, err
		}
		page.Items, page.Total = items, total
		return page, nil
	}

	items, total, err := s.Cache.Page(ctx, f.Offset, f.Limit)
	if err == nil && total > 0 {
		page.Items, page.Total = items, total
		return page, nil
	}
	if err != nil {
		log.Printf("menu cache read failed: %v", err)
	}

	all, total, err := s.Menu.ListMenuItems(ctx, repository.MenuFilter{})
	if err != nil {
		return page, err
	}
	if err := s.Cache.Fill(ctx, all); err != nil {
		log.Printf("menu cache fill failed: %v", err)
	}

	page.Total = total
	page.Items = []models.MenuItem{}
	if f.Offset < len(all) {
		end := f.Offset + f.Limit
		if end > len(all) {
			end = len(all)
		}
		page.Items = all[f.Offset:end]
	}
	return page, nil
}

func (s *MenuService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	item, err := s.Menu.MenuItemByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrMenuItemNotFound, id)
	}
	return item, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuItemIn) (*models.MenuItem, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, validationError("'title' is required")
	}
	if in.Price == nil {
		return nil, validationError("'price' is required")
	}
	if in.CategoryID == nil {
		return nil, validationError("'category_id' is required")
	}
	if err := checkPrice(*in.Price); err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		Title:      strings.TrimSpace(*in.Title),
		Price:      in.Price.Round(2),
		CategoryID: *in.CategoryID,
	}
	if in.Featured != nil {
		item.Featured = *in.Featured
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.Categories.WithTx(tx).FindByID(ctx, item.CategoryID)
		if err != nil {
			return notFound(err, ErrCategoryNotFound, item.CategoryID)
		}
		if err := s.Menu.WithTx(tx).CreateMenuItem(ctx, item); err != nil {
			return err
		}
		item.Category = *category
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.syncCache(ctx, func(c MenuCache) error { return c.Put(ctx, *item) })
	return item, nil
}

// Update changes a menu item. Admins may change every field; managers may only
// toggle featured, other fields they send are ignored.
func (s *MenuService) Update(ctx context.Context, caller permission.Caller, id uint, in MenuItemIn) (*models.MenuItem, error) {
	if !caller.Roles.IsManagerOrAdmin() {
		return nil, ErrForbidden
	}
	if !caller.Is(permission.Admin) {
		in = MenuItemIn{Featured: in.Featured}
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, validationError("'title' may not be blank")
	}
	if in.Price != nil {
		if err := checkPrice(*in.Price); err != nil {
			return nil, err
		}
	}

	var item *models.MenuItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		menu := s.Menu.WithTx(tx)
		var err error
		item, err = menu.MenuItemByID(ctx, id)
		if err != nil {
			return notFound(err, ErrMenuItemNotFound, id)
		}

		if in.Title != nil {
			item.Title = strings.TrimSpace(*in.Title)
		}
		if in.Price != nil {
			item.Price = in.Price.Round(2)
		}
		if in.Featured != nil {
			item.Featured = *in.Featured
		}
		if in.CategoryID != nil && *in.CategoryID != item.CategoryID {
			category, err := s.Categories.WithTx(tx).FindByID(ctx, *in.CategoryID)
			if err != nil {
				return notFound(err, ErrCategoryNotFound, *in.CategoryID)
			}
			item.CategoryID = category.ID
			item.Category = *category
		}

		return menu.SaveMenuItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	s.syncCache(ctx, func(c MenuCache) error { return c.Put(ctx, *item) })
	return item, nil
}

// Delete removes a menu item. Cart lines holding it go with it.
func (s *MenuService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		menu := s.Menu.WithTx(tx)
		ordered, err := menu.Ordered(ctx, id)
		if err != nil {
			return err
		}
		if ordered {
			return validationError("menu item %d is part of an order", id)
		}
		rows, err := menu.DeleteMenuItem(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound(gorm.ErrRecordNotFound, ErrMenuItemNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.syncCache(ctx, func(c MenuCache) error { return c.Remove(ctx, id) })
	return nil
}

// syncCache applies a committed change to the cache. When that fails the cache
// is dropped so the next list reloads it from the database.
func (s *MenuService) syncCache(ctx context.Context, write func(MenuCache) error) {
	if s.Cache == nil {
		return
	}
	if err := write(s.Cache); err != nil {
		log.Printf("menu cache write failed, invalidating: %v", err)
		if err := s.Cache.Invalidate(ctx); err != nil {
			log.Printf("menu cache invalidate failed: %v", err)
		}
	}
}

func checkPrice(price decimal.Decimal) error {
	if err := pricing.CheckAmount(price.Round(2)); err != nil {
		return fmt.Errorf("%w: 'price' %w", ErrValidation, err)
	}
	return nil
}
