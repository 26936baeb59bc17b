package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/repository"
	"go-restaurant-authz/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService is the administrator directory. Every mutation is checked
// against the acting role, validated, written in one transaction together
// with its audit entry, then broadcast.
type AdminService interface {
	CreateAdmin(actor Actor, req *CreateAdminRequest) (*model.Admin, error)
	UpdateAdmin(actor Actor, id uuid.UUID, req *UpdateAdminRequest) (*model.Admin, error)
	UpdateResponsibilityMatrix(actor Actor, id uuid.UUID, m model.ResponsibilityMatrix) (*model.Admin, error)
	DeleteAdmin(actor Actor, id uuid.UUID) error
	ToggleStatus(actor Actor, id uuid.UUID) (*model.Admin, error)
	GetAdmin(id uuid.UUID) (*model.Admin, error)
	ListAdmins() ([]model.Admin, error)
	ExportMatrix(id uuid.UUID) ([]byte, error)
	ImportMatrix(actor Actor, id uuid.UUID, data []byte) (*model.Admin, error)
	EnsureSuperAdmin(email, password string) (bool, error)
}

type CreateAdminRequest struct {
	Name        string                      `json:"name" validate:"required,max=255"`
	Email       string                      `json:"email" validate:"required,email"`
	Password    string                      `json:"password" validate:"required,min=6"`
	Role        model.UserRole              `json:"role" validate:"omitempty,oneof=admin sub_admin"`
	OutletScope model.OutletScope           `json:"outlet_scope" validate:"omitempty,oneof=single multi"`
	Matrix      *model.ResponsibilityMatrix `json:"responsibility_matrix"`
}

// UpdateAdminRequest is a partial update; nil fields are left unchanged.
type UpdateAdminRequest struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email       *string            `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string            `json:"password,omitempty" validate:"omitempty,min=6"`
	OutletScope *model.OutletScope `json:"outlet_scope,omitempty" validate:"omitempty,oneof=single multi"`
	Status      *model.AdminStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type adminService struct {
	db        *gorm.DB
	adminRepo repository.AdminRepository
	registry  RegistryService
	audit     AuditService
	publisher EventPublisher
	metrics   *metrics.Metrics
}

func NewAdminService(
	db *gorm.DB,
	adminRepo repository.AdminRepository,
	registry RegistryService,
	audit AuditService,
	publisher EventPublisher,
	m *metrics.Metrics,
) AdminService {
	return &adminService{
		db:        db,
		adminRepo: adminRepo,
		registry:  registry,
		audit:     audit,
		publisher: publisherOrNop(publisher),
		metrics:   m,
	}
}

func (s *adminService) CreateAdmin(actor Actor, req *CreateAdminRequest) (*model.Admin, error) {
	// 1. Only a Super Admin creates accounts
	if !actor.IsSuperAdmin() {
		return nil, ErrUnauthorizedOperation
	}

	// 2. Validate request and matrix
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	matrix := model.NewResponsibilityMatrix()
	if req.Matrix != nil {
		if err := s.registry.ValidateMatrix(req.Matrix); err != nil {
			return nil, err
		}
		matrix = req.Matrix.Clone()
	}

	// 3. Build the account
	admin := &model.Admin{
		Name:        strings.TrimSpace(req.Name),
		Email:       normalizeEmail(req.Email),
		Role:        req.Role,
		OutletScope: req.OutletScope,
		Status:      model.StatusActive,
	}
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}
	if admin.OutletScope == "" {
		admin.OutletScope = model.OutletSingle
	}
	admin.CreatedBy = actor.Label()
	admin.UpdatedBy = actor.Label()
	admin.SetResponsibilityMatrix(matrix)
	if err := admin.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	// 4. Save with its audit entry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		admins := s.adminRepo.WithTx(tx)
		if _, err := admins.FindByEmail(admin.Email); err == nil {
			return ErrEmailExists
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}
		if err := admins.Create(admin); err != nil {
			return err
		}
		return s.audit.Record(tx, &model.AuditLog{
			PerformedBy: actor.Label(),
			Action:      model.ActionCreateAdmin,
			Details:     fmt.Sprintf("Created %s %s (%s outlet)", admin.Role, admin.Email, admin.OutletScope),
			EntityType:  model.EntityAdmin,
			EntityID:    admin.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAdminMutation(model.ActionCreateAdmin)
	s.metrics.RecordAuditEntry(string(model.EntityAdmin))
	s.broadcastAdmin(actor, "admin_created", admin)
	return admin, nil
}

func (s *adminService) UpdateAdmin(actor Actor, id uuid.UUID, req *UpdateAdminRequest) (*model.Admin, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Admins may edit their own profile; status and scope stay with the Super Admin.
	self := actor.ID == id
	if !actor.IsSuperAdmin() {
		if !self || req.Status != nil || req.OutletScope != nil {
			return nil, ErrUnauthorizedOperation
		}
	}

	var admin *model.Admin
	err := s.db.Transaction(func(tx *gorm.DB) error {
		admins := s.adminRepo.WithTx(tx)

		var err error
		admin, err = admins.FindByIDForUpdate(id)
		if err != nil {
			return notFound(err)
		}
		if req.Status != nil && admin.Role == model.RoleSuperAdmin && *req.Status != model.StatusActive {
			return ErrUnauthorizedOperation
		}

		changed, err := s.applyUpdate(admins, admin, req)
		if err != nil {
			return err
		}

		admin.UpdatedBy = actor.Label()
		if err := admins.Update(admin); err != nil {
			return err
		}

		details := "No field changed"
		if len(changed) > 0 {
			details = "Updated " + strings.Join(changed, ", ")
		}
		return s.audit.Record(tx, &model.AuditLog{
			PerformedBy: actor.Label(),
			Action:      model.ActionUpdateAdmin,
			Details:     fmt.Sprintf("%s of %s", details, admin.Email),
			EntityType:  model.EntityAdmin,
			EntityID:    admin.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAdminMutation(model.ActionUpdateAdmin)
	s.metrics.RecordAuditEntry(string(model.EntityAdmin))
	s.broadcastAdmin(actor, "admin_updated", admin)
	return admin, nil
}

// applyUpdate merges req into admin and returns the names of changed fields.
func (s *adminService) applyUpdate(admins repository.AdminRepository, admin *model.Admin, req *UpdateAdminRequest) ([]string, error) {
	var changed []string

	if req.Name != nil && strings.TrimSpace(*req.Name) != admin.Name {
		admin.Name = strings.TrimSpace(*req.Name)
		changed = append(changed, "name")
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != admin.Email {
			if _, err := admins.FindByEmail(email); err == nil {
				return nil, ErrEmailExists
			} else if !errors.Is(err, repository.ErrRecordNotFound) {
				return nil, err
			}
			admin.Email = email
			changed = append(changed, "email")
		}
	}
	if req.Password != nil {
		if err := admin.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
		// drop open sessions
		admin.TokenVersion = ""
		changed = append(changed, "password")
	}
	if req.OutletScope != nil && *req.OutletScope != admin.OutletScope {
		admin.OutletScope = *req.OutletScope
		changed = append(changed, "outlet scope")
	}
	if req.Status != nil && *req.Status != admin.Status {
		admin.Status = *req.Status
		changed = append(changed, "status")
	}
	return changed, nil
}

// UpdateResponsibilityMatrix replaces the stored matrix as a whole; callers
// submit the complete matrix.
func (s *adminService) UpdateResponsibilityMatrix(actor Actor, id uuid.UUID, m model.ResponsibilityMatrix) (*model.Admin, error) {
	return s.replaceMatrix(actor, id, m, model.ActionUpdatePermissions)
}

func (s *adminService) replaceMatrix(actor Actor, id uuid.UUID, m model.ResponsibilityMatrix, action string) (*model.Admin, error) {
	if !actor.IsSuperAdmin() {
		return nil, ErrUnauthorizedOperation
	}
	if err := s.registry.ValidateMatrix(&m); err != nil {
		return nil, err
	}

	var admin *model.Admin
	err := s.db.Transaction(func(tx *gorm.DB) error {
		admins := s.adminRepo.WithTx(tx)

		var err error
		admin, err = admins.FindByIDForUpdate(id)
		if err != nil {
			return notFound(err)
		}

		admin.SetResponsibilityMatrix(m)
		admin.UpdatedBy = actor.Label()
		if err := admins.Update(admin); err != nil {
			return err
		}

		return s.audit.Record(tx, &model.AuditLog{
			PerformedBy: actor.Label(),
			Action:      action,
			Details:     fmt.Sprintf("Replaced responsibility matrix of %s: %s", admin.Email, describeMatrix(m)),
			EntityType:  model.EntityPermission,
			EntityID:    admin.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAdminMutation(action)
	s.metrics.RecordAuditEntry(string(model.EntityPermission))
	s.publisher.Publish(ws.Event{
		Type:     "admin_update",
		Action:   "matrix_updated",
		EntityID: admin.ID.String(),
		Data:     admin.ResponsibilityMatrix(),
		Actor:    actor.Label(),
		Message:  fmt.Sprintf("%s updated permissions of %s", actor.Label(), admin.Email),
	})
	return admin, nil
}

// DeleteAdmin removes the account immediately. Audit entries that reference
// it are kept. Super Admin accounts and the caller's own account cannot be
// deleted.
func (s *adminService) DeleteAdmin(actor Actor, id uuid.UUID) error {
	if !actor.IsSuperAdmin() || actor.ID == id {
		return ErrUnauthorizedOperation
	}

	var email string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		admins := s.adminRepo.WithTx(tx)
		admin, err := admins.FindByIDForUpdate(id)
		if err != nil {
			return notFound(err)
		}
		if admin.Role == model.RoleSuperAdmin {
			return ErrUnauthorizedOperation
		}
		email = admin.Email

		if err := admins.Delete(id); err != nil {
			return notFound(err)
		}
		return s.audit.Record(tx, &model.AuditLog{
			PerformedBy: actor.Label(),
			Action:      model.ActionDeleteAdmin,
			Details:     fmt.Sprintf("Deleted %s", email),
			EntityType:  model.EntityAdmin,
			EntityID:    id.String(),
		})
	})
	if err != nil {
		return err
	}

	s.metrics.RecordAdminMutation(model.ActionDeleteAdmin)
	s.metrics.RecordAuditEntry(string(model.EntityAdmin))
	s.publisher.Publish(ws.Event{
		Type:     "admin_update",
		Action:   "admin_deleted",
		EntityID: id.String(),
		Actor:    actor.Label(),
		Message:  fmt.Sprintf("%s deleted %s", actor.Label(), email),
	})
	return nil
}

// ToggleStatus flips active/inactive through UpdateAdmin.
func (s *adminService) ToggleStatus(actor Actor, id uuid.UUID) (*model.Admin, error) {
	admin, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}
	next := model.StatusInactive
	if admin.Status != model.StatusActive {
		next = model.StatusActive
	}
	return s.UpdateAdmin(actor, id, &UpdateAdminRequest{Status: &next})
}

func (s *adminService) GetAdmin(id uuid.UUID) (*model.Admin, error) {
	admin, err := s.adminRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return admin, nil
}

func (s *adminService) ListAdmins() ([]model.Admin, error) {
	return s.adminRepo.FindAll()
}

// ExportMatrix returns the admin's matrix as indented JSON.
func (s *adminService) ExportMatrix(id uuid.UUID) ([]byte, error) {
	admin, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(admin.ResponsibilityMatrix(), "", "  ")
}

// ImportMatrix replaces the admin's matrix with an exported one.
func (s *adminService) ImportMatrix(actor Actor, id uuid.UUID, data []byte) (*model.Admin, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var m model.ResponsibilityMatrix
	if err := dec.Decode(&m); err != nil {
		return nil, &ValidationError{Problems: []string{"malformed matrix: " + err.Error()}}
	}
	return s.replaceMatrix(actor, id, m, model.ActionImportPermissions)
}

// EnsureSuperAdmin creates the bootstrap Super Admin when no account uses
// the email yet. It reports whether an account was created.
func (s *adminService) EnsureSuperAdmin(email, password string) (bool, error) {
	email = normalizeEmail(email)
	if _, err := s.adminRepo.FindByEmail(email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return false, err
	}

	admin := &model.Admin{
		Name:        "Super Administrator",
		Email:       email,
		Role:        model.RoleSuperAdmin,
		OutletScope: model.OutletMulti,
		Status:      model.StatusActive,
	}
	admin.CreatedBy = SystemActor.Label()
	admin.UpdatedBy = SystemActor.Label()
	admin.SetResponsibilityMatrix(model.NewResponsibilityMatrix())
	if err := admin.SetPassword(password); err != nil {
		return false, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.adminRepo.WithTx(tx).Create(admin); err != nil {
			return err
		}
		return s.audit.Record(tx, &model.AuditLog{
			PerformedBy: SystemActor.Label(),
			Action:      model.ActionCreateAdmin,
			Details:     fmt.Sprintf("Bootstrapped super admin %s", email),
			EntityType:  model.EntityAdmin,
			EntityID:    admin.ID.String(),
		})
	})
	if err != nil {
		return false, err
	}
	s.metrics.RecordAuditEntry(string(model.EntityAdmin))
	return true, nil
}

func (s *adminService) broadcastAdmin(actor Actor, action string, admin *model.Admin) {
	s.publisher.Publish(ws.Event{
		Type:     "admin_update",
		Action:   action,
		EntityID: admin.ID.String(),
		Data:     admin.ToResponse(),
		Actor:    actor.Label(),
		Message:  fmt.Sprintf("%s: %s", strings.ReplaceAll(action, "_", " "), admin.Email),
	})
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// describeMatrix summarizes grants for the audit details column.
func describeMatrix(m model.ResponsibilityMatrix) string {
	var features, pages []string
	for f, ok := range m.FeatureAuthority {
		if ok {
			features = append(features, string(f))
		}
	}
	for p, ok := range m.PageAuthority {
		if ok {
			pages = append(pages, string(p))
		}
	}
	sort.Strings(features)
	sort.Strings(pages)
	return fmt.Sprintf("features [%s], pages [%s]", strings.Join(features, ", "), strings.Join(pages, ", "))
}
