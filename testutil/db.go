package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"salon-backend/config"
	"salon-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// OpenDB returns a migrated, empty in-memory SQLite database private to t.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:salon_test_%d?mode=memory&cache=shared&_foreign_keys=1", dbSeq.Add(1))
	cfg := config.GormConfig(false)
	cfg.Logger = logger.Discard
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Fixture holds the rows most service tests start from.
type Fixture struct {
	Admin     models.User
	Client    models.User
	Category  models.Category
	Treatment models.Treatment
	Product   models.Product
	Currency  models.Currency
}

// Seed inserts one admin, one client, a category with a treatment priced at
// 15000, a product and the Colones currency.
func Seed(t testing.TB, db *gorm.DB) Fixture {
	t.Helper()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	adminRole := models.Role{Name: models.RoleAdmin}
	clientRole := models.Role{Name: models.RoleClient}
	must(db.Create(&clientRole).Error)
	must(db.Create(&adminRole).Error)

	f := Fixture{
		Admin:    models.User{FirstName: "Ana", LastName: "Mora", Phone: "+50688880000", Username: "ana", PasswordHash: "x", RoleID: adminRole.ID},
		Client:   models.User{FirstName: "Luis", LastName: "Rojas", Phone: "+50688881111", Username: "luis", PasswordHash: "x", RoleID: clientRole.ID},
		Category: models.Category{Name: "Cabello"},
		Currency: models.Currency{Name: "Colones", Symbol: "₡"},
		Product:  models.Product{Name: "Shampoo", Price: 4500, Stock: 10},
	}
	must(db.Create(&f.Admin).Error)
	must(db.Create(&f.Client).Error)
	must(db.Create(&f.Category).Error)
	f.Treatment = models.Treatment{Name: "Corte", Price: 15000, CategoryID: f.Category.ID}
	must(db.Create(&f.Treatment).Error)
	must(db.Create(&f.Product).Error)
	must(db.Create(&f.Currency).Error)
	return f
}
