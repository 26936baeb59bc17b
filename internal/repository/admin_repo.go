package repository

import (
	"time"

	"go-restaurant-authz/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminRepository interface {
	WithTx(tx *gorm.DB) AdminRepository
	FindByID(id uuid.UUID) (*model.Admin, error)
	FindByIDForUpdate(id uuid.UUID) (*model.Admin, error)
	FindByEmail(email string) (*model.Admin, error)
	FindAll() ([]model.Admin, error)
	Create(admin *model.Admin) error
	Update(admin *model.Admin) error
	Delete(id uuid.UUID) error
	UpdateSession(id uuid.UUID, tokenVersion string, at time.Time) error
}

type adminRepo struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) AdminRepository {
	return &adminRepo{db}
}

func (r *adminRepo) WithTx(tx *gorm.DB) AdminRepository {
	return &adminRepo{tx}
}

func (r *adminRepo) FindByID(id uuid.UUID) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.First(&admin, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
// SQLite has no row locks and ignores the clause.
func (r *adminRepo) FindByIDForUpdate(id uuid.UUID) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&admin, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepo) FindByEmail(email string) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepo) FindAll() ([]model.Admin, error) {
	var admins []model.Admin
	if err := r.db.Order("created_at ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *adminRepo) Create(admin *model.Admin) error {
	return r.db.Create(admin).Error
}

func (r *adminRepo) Update(admin *model.Admin) error {
	return r.db.Save(admin).Error
}

func (r *adminRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Admin{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *adminRepo) UpdateSession(id uuid.UUID, tokenVersion string, at time.Time) error {
	return r.db.Model(&model.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"token_version": tokenVersion,
		"last_login_at": at,
	}).Error
}
