package database

import (
	"os"

	"github.com/glowday/api/config"
	"github.com/glowday/api/internal/model"
	"github.com/glowday/api/pkg/crypto"
	applogger "github.com/glowday/api/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed inserts the base roles and the super-admin account. Safe to run on
// every boot; existing rows are left alone.
func Seed(db *gorm.DB, cfg *config.Config) error {
	roles := []string{
		model.RoleUser,
		model.RoleVendor,
		model.RoleSalon,
		model.RoleArtist,
		model.RoleSuperAdmin,
	}
	for _, name := range roles {
		var count int64
		if err := db.Model(&model.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&model.Role{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword(adminPassword, cfg.Bcrypt.Cost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:             "Administrator",
		Email:            adminEmail,
		Username:         "admin",
		Password:         hashed,
		Role:             model.RoleSuperAdmin,
		EmailVerified:    true,
		MobileNoVerified: true,
		ImageURL:         model.DefaultImageURL,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	applogger.GetLogger().Info("Admin account seeded", zap.String("email", adminEmail))
	return nil
}
