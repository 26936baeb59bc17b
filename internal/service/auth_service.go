package service

import (
	"errors"
	"time"

	"go-restaurant-authz/internal/authz"
	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/repository"
	"go-restaurant-authz/pkg/jwt"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminInactive      = errors.New("admin account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
	Authenticate(tokenString string) (*model.Admin, error)
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Permissions(admin *model.Admin) (*authz.Snapshot, error)
}

type LoginResponse struct {
	Token       string              `json:"token"`
	Admin       model.AdminResponse `json:"admin"`
	Permissions *authz.Snapshot     `json:"permissions"`
}

type TokenValidationResponse struct {
	Admin       model.AdminResponse `json:"admin"`
	Permissions *authz.Snapshot     `json:"permissions"`
}

type authService struct {
	adminRepo repository.AdminRepository
	admins    AdminService
	registry  RegistryService
	evaluator authz.Evaluator
	issuer    *jwt.Issuer
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewAuthService(
	adminRepo repository.AdminRepository,
	admins AdminService,
	registry RegistryService,
	evaluator authz.Evaluator,
	issuer *jwt.Issuer,
	m *metrics.Metrics,
) AuthService {
	return &authService{
		adminRepo: adminRepo,
		admins:    admins,
		registry:  registry,
		evaluator: evaluator,
		issuer:    issuer,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	// 1. Find admin by email
	admin, err := s.adminRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		s.metrics.RecordLoginAttempt("failure")
		return nil, ErrInvalidCredentials
	}

	// 2. Verify password before revealing account state
	if !admin.CheckPassword(password) {
		s.metrics.RecordLoginAttempt("failure")
		return nil, ErrInvalidCredentials
	}

	// 3. Check if admin is active
	if !admin.IsActive() {
		s.metrics.RecordLoginAttempt("inactive")
		return nil, ErrAdminInactive
	}

	// 4. Single session: a new token version invalidates older tokens
	version := uuid.New().String()
	now := s.now()
	if err := s.adminRepo.UpdateSession(admin.ID, version, now); err != nil {
		return nil, errors.New("failed to update session")
	}
	admin.TokenVersion = version
	admin.LastLoginAt = &now

	// 5. Sign the token
	token, err := s.issuer.GenerateToken(admin, version)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	snapshot, err := s.Permissions(admin)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLoginAttempt("success")
	return &LoginResponse{
		Token:       token,
		Admin:       admin.ToResponse(),
		Permissions: snapshot,
	}, nil
}

// ResetPassword lets an admin change their own password. The change goes
// through the directory, so it is audited and ends open sessions.
func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		return ErrNotFound
	}
	if !admin.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	_, err = s.admins.UpdateAdmin(ActorFor(admin), admin.ID, &UpdateAdminRequest{Password: &newPassword})
	return err
}

// Authenticate resolves a bearer token to the live admin record, so role,
// status and matrix changes apply on the next request.
func (s *authService) Authenticate(tokenString string) (*model.Admin, error) {
	claims, err := s.issuer.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.FindByID(claims.AdminID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !admin.IsActive() {
		return nil, ErrAdminInactive
	}
	if admin.TokenVersion == "" || admin.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	return admin, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	admin, err := s.Authenticate(tokenString)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.Permissions(admin)
	if err != nil {
		return nil, err
	}
	return &TokenValidationResponse{Admin: admin.ToResponse(), Permissions: snapshot}, nil
}

// Permissions evaluates the admin's matrix across the current registry.
func (s *authService) Permissions(admin *model.Admin) (*authz.Snapshot, error) {
	pages, err := s.registry.PageKeys()
	if err != nil {
		return nil, err
	}
	m := admin.ResponsibilityMatrix()
	snapshot := authz.TakeSnapshot(s.evaluator, admin.Role, &m, pages)
	return &snapshot, nil
}
