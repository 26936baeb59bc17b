package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type OutletScope string

const (
	OutletSingle OutletScope = "single"
	OutletMulti  OutletScope = "multi"
)

type AdminStatus string

const (
	StatusActive   AdminStatus = "active"
	StatusInactive AdminStatus = "inactive"
)

// Admin is an administrator account. It owns exactly one responsibility
// matrix, stored as a JSON column on the same row.
type Admin struct {
	BaseModel
	Name         string                                   `gorm:"type:varchar(255);not null" json:"name"`
	Email        string                                   `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string                                   `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole                                 `gorm:"type:varchar(32);not null;default:'admin'" json:"role"`
	OutletScope  OutletScope                              `gorm:"type:varchar(16);not null;default:'single'" json:"outlet_scope"`
	Status       AdminStatus                              `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	Matrix       datatypes.JSONType[ResponsibilityMatrix] `json:"-"`
	TokenVersion string                                   `gorm:"type:varchar(255);default:''" json:"-"` // single session enforcement
	LastLoginAt  *time.Time                               `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the admin's credential
func (a *Admin) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashed)
	return nil
}

// CheckPassword verifies the provided password against the stored hash
func (a *Admin) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)) == nil
}

func (a *Admin) IsActive() bool {
	return a.Status == StatusActive
}

// ResponsibilityMatrix returns a copy of the stored matrix.
func (a *Admin) ResponsibilityMatrix() ResponsibilityMatrix {
	return a.Matrix.Data().Clone()
}

func (a *Admin) SetResponsibilityMatrix(m ResponsibilityMatrix) {
	a.Matrix = datatypes.NewJSONType(m.Clone())
}

// AdminResponse is used for API responses (without the credential)
type AdminResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Role        UserRole             `json:"role"`
	OutletScope OutletScope          `json:"outlet_scope"`
	Status      AdminStatus          `json:"status"`
	Matrix      ResponsibilityMatrix `json:"responsibility_matrix"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	CreatedBy   string               `json:"created_by"`
	UpdatedBy   string               `json:"updated_by"`
	LastLoginAt *time.Time           `json:"last_login_at,omitempty"`
}

// ToResponse converts Admin to AdminResponse
func (a *Admin) ToResponse() AdminResponse {
	return AdminResponse{
		ID:          a.ID.String(),
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		OutletScope: a.OutletScope,
		Status:      a.Status,
		Matrix:      a.ResponsibilityMatrix(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		CreatedBy:   a.CreatedBy,
		UpdatedBy:   a.UpdatedBy,
		LastLoginAt: a.LastLoginAt,
	}
}
