package config

import (
	"context"
	"log"

	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedGroups creates the Manager, Delivery Crew and Customer groups.
func SeedGroups(ctx context.Context, db *gorm.DB) error {
	return repository.NewUserRepository(db).EnsureGroups(ctx,
		permission.ManagerGroup,
		permission.DeliveryCrewGroup,
		permission.CustomerGroup,
	)
}

// SeedAdmin creates the first superuser when credentials are configured.
func SeedAdmin(ctx context.Context, db *gorm.DB, seed SeedConfig) error {
	if seed.AdminUsername == "" || seed.AdminPassword == "" {
		log.Println("skip seeding admin: missing ADMIN_USERNAME/ADMIN_PASSWORD")
		return nil
	}

	users := repository.NewUserRepository(db)
	exists, err := users.UsernameExists(ctx, seed.AdminUsername)
	if err != nil {
		return err
	}
	if exists {
		log.Println("admin already exists:", seed.AdminUsername)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: seed.AdminUsername,
		Email:    seed.AdminEmail,
		Password: string(hash),
		IsAdmin:  true,
	}
	return users.Create(ctx, &admin)
}
