package services

import (
	"fmt"
	"testing"

	"github.com/diewo77/pcquote/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Component{}, &models.CompanyInfo{}, &models.Document{}, &models.DocumentLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
