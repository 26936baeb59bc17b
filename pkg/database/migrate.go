package database

import (
	"go-restaurant-authz/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables owned by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Admin{}, &model.AuditLog{}, &model.PageDefinition{})
}
