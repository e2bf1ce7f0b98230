package repository

import (
	"context"
	"errors"

	"LittleLemon/models"
	"LittleLemon/permission"

	"gorm.io/gorm"
)

type UserRepository struct{ DB *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{DB: db} }

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository { return &UserRepository{DB: tx} }

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Omit("Groups", "LoginTokens").Create(u).Error
}

// HasRole reports whether the user belongs to the named group.
func (r *UserRepository) HasRole(ctx context.Context, userID uint, group string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Table("auth_user_groups").
		Joins("JOIN auth_groups ON auth_groups.id = auth_user_groups.group_id").
		Where("auth_user_groups.user_id = ? AND auth_groups.name = ?", userID, group).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Select("id", "is_admin").First(&u, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.IsAdmin, nil
}

// Roles loads the full role set of a user. A missing user yields gorm.ErrRecordNotFound.
func (r *UserRepository) Roles(ctx context.Context, userID uint) (permission.Set, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Preload("Groups").First(&u, userID).Error; err != nil {
		return 0, err
	}
	return rolesOf(&u), nil
}

func rolesOf(u *models.User) permission.Set {
	var roles permission.Set
	if u.IsAdmin {
		roles = roles.With(permission.Admin)
	}
	for _, g := range u.Groups {
		if role, ok := permission.RoleForGroup(g.Name); ok {
			roles = roles.With(role)
		}
	}
	return roles
}

func (r *UserRepository) FindGroup(ctx context.Context, name string) (*models.Group, error) {
	var g models.Group
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// EnsureGroups creates the named groups if they are missing.
func (r *UserRepository) EnsureGroups(ctx context.Context, names ...string) error {
	for _, name := range names {
		g := models.Group{Name: name}
		if err := r.DB.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&g).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepository) GroupMembers(ctx context.Context, name string) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Joins("JOIN auth_user_groups ON auth_user_groups.user_id = users.id").
		Joins("JOIN auth_groups ON auth_groups.id = auth_user_groups.group_id").
		Where("auth_groups.name = ?", name).
		Order("users.id").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) AddToGroup(ctx context.Context, u *models.User, g *models.Group) error {
	return r.DB.WithContext(ctx).Model(u).Association("Groups").Append(g)
}

func (r *UserRepository) RemoveFromGroup(ctx context.Context, u *models.User, g *models.Group) error {
	return r.DB.WithContext(ctx).Model(u).Association("Groups").Delete(g)
}

func (r *UserRepository) SaveLoginToken(ctx context.Context, t *models.LoginToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *UserRepository) LoginTokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.LoginToken{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) DeleteLoginToken(ctx context.Context, token string) (int64, error) {
	result := r.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.LoginToken{})
	return result.RowsAffected, result.Error
}
