package repository

import (
	"database/sql"
	"errors"

	"go-restaurant-authz/internal/model"

	"gorm.io/gorm"
)

type PageRepository interface {
	WithTx(tx *gorm.DB) PageRepository
	FindAll() ([]model.PageDefinition, error)
	FindByKey(key model.Page) (*model.PageDefinition, error)
	Create(page *model.PageDefinition) error
	Delete(key model.Page) error
	SeedDefaults() error
}

type pageRepo struct {
	db *gorm.DB
}

func NewPageRepo(db *gorm.DB) PageRepository {
	return &pageRepo{db}
}

func (r *pageRepo) WithTx(tx *gorm.DB) PageRepository {
	return &pageRepo{tx}
}

func (r *pageRepo) FindAll() ([]model.PageDefinition, error) {
	var pages []model.PageDefinition
	if err := r.db.Order("position ASC").Order("page_key ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepo) FindByKey(key model.Page) (*model.PageDefinition, error) {
	var page model.PageDefinition
	if err := r.db.Where("page_key = ?", key).First(&page).Error; err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

// Create appends the page after the current last position.
func (r *pageRepo) Create(page *model.PageDefinition) error {
	var maxPos sql.NullInt64
	if err := r.db.Model(&model.PageDefinition{}).Select("MAX(position)").Row().Scan(&maxPos); err != nil {
		return err
	}
	page.Position = 0
	if maxPos.Valid {
		page.Position = int(maxPos.Int64) + 1
	}
	return r.db.Create(page).Error
}

func (r *pageRepo) Delete(key model.Page) error {
	res := r.db.Delete(&model.PageDefinition{}, "page_key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SeedDefaults creates the default pages if the registry is empty. Pages an
// operator removed are not brought back on restart.
func (r *pageRepo) SeedDefaults() error {
	var count int64
	if err := r.db.Model(&model.PageDefinition{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for i, p := range model.DefaultPages {
		page := p
		page.Position = i
		page.CreatedBy = "system"
		if err := r.db.Create(&page).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return nil
}
