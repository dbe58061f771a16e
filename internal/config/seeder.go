package config

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/core/domain"
	"parkhub/internal/pkg/password"
)

// SeedAdmin creates the superuser account if it does not exist yet.
// The admin cannot register through the API, so it is provisioned here.
func SeedAdmin(db *gorm.DB, config *Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash(config.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		Username: config.Admin.Username,
		Email:    config.Admin.Email,
		Password: hashed,
		Role:     string(domain.RoleAdmin),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Printf("✅ Admin user '%s' seeded", admin.Username)
	return nil
}
