package services

import (
	"context"
	"log"

	"salon-backend/models"

	"gorm.io/gorm"
)

// Seed inserts the roles and the default currency when they are missing.
func Seed(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	for _, name := range []string{models.RoleClient, models.RoleAdmin} {
		var n int64
		if err := db.Model(&models.Role{}).Where("name = ?", name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			return err
		}
		log.Printf("Seeded role %s", name)
	}

	var currencies int64
	if err := db.Model(&models.Currency{}).Count(&currencies).Error; err != nil {
		return err
	}
	if currencies == 0 {
		if err := db.Create(&models.Currency{Name: "Colones", Symbol: "₡"}).Error; err != nil {
			return err
		}
		log.Println("Seeded currency Colones")
	}
	return nil
}
