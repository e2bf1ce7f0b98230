package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"LittleLemon/models"
	"LittleLemon/repository"

	"gorm.io/gorm"
)

type CategoryService struct {
	DB         *gorm.DB
	Categories *repository.CategoryRepository
	Menu       *repository.MenuRepository
	Cache      MenuCache
}

func NewCategoryService(db *gorm.DB, categories *repository.CategoryRepository, menu *repository.MenuRepository, cache MenuCache) *CategoryService {
	return &CategoryService{DB: db, Categories: categories, Menu: menu, Cache: cache}
}

type CategoryIn struct {
	Title *string `json:"title"`
	Slug  *string `json:"slug"`
}

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases title and joins its words with dashes.
func Slugify(title string) string {
	return strings.Trim(nonSlugRunes.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.Categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound, id)
	}
	return c, nil
}

// Create adds a category. The slug is derived from the title when not given.
func (s *CategoryService) Create(ctx context.Context, in CategoryIn) (*models.Category, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, validationError("'title' is required")
	}
	c := &models.Category{Title: strings.TrimSpace(*in.Title)}
	if err := applySlug(c, in.Slug); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := s.Categories.WithTx(tx)
		if err := checkTaken(ctx, categories, c); err != nil {
			return err
		}
		return duplicateCategory(categories.Create(ctx, c), c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryIn) (*models.Category, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, validationError("'title' may not be blank")
	}

	var c *models.Category
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := s.Categories.WithTx(tx)
		var err error
		c, err = categories.FindByID(ctx, id)
		if err != nil {
			return notFound(err, ErrCategoryNotFound, id)
		}
		if in.Title != nil {
			c.Title = strings.TrimSpace(*in.Title)
		}
		if in.Slug != nil {
			if err := applySlug(c, in.Slug); err != nil {
				return err
			}
		}
		if err := checkTaken(ctx, categories, c); err != nil {
			return err
		}
		if err := categories.Save(ctx, c); err != nil {
			return duplicateCategory(err, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	//cached menu items embed the category
	s.invalidate(ctx)
	return c, nil
}

// Delete removes a category that no menu item uses.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inUse, err := s.Menu.WithTx(tx).CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return validationError("category %d still has %d menu items", id, inUse)
		}
		rows, err := s.Categories.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound(gorm.ErrRecordNotFound, ErrCategoryNotFound, id)
		}
		return nil
	})
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		log.Printf("menu cache invalidate failed: %v", err)
	}
}

func applySlug(c *models.Category, slug *string) error {
	if slug == nil || strings.TrimSpace(*slug) == "" {
		c.Slug = Slugify(c.Title)
	} else {
		c.Slug = strings.TrimSpace(*slug)
	}
	if !slugPattern.MatchString(c.Slug) {
		return validationError("'slug' must contain only lowercase letters, digits and dashes")
	}
	return nil
}

func checkTaken(ctx context.Context, categories *repository.CategoryRepository, c *models.Category) error {
	taken, err := categories.Taken(ctx, c.Title, c.Slug, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return duplicateCategory(gorm.ErrDuplicatedKey, c)
	}
	return nil
}

func duplicateCategory(err error, c *models.Category) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return validationError("category with title %q or slug %q already exists", c.Title, c.Slug)
	}
	return err
}
