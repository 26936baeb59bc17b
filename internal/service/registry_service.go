package service

import (
	"errors"
	"fmt"
	"sort"

	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/repository"
	"go-restaurant-authz/internal/ws"
	"go-restaurant-authz/pkg/validator"

	"gorm.io/gorm"
)

// RegistryService owns the permission vocabulary: the closed feature, role
// and delegation enums plus the runtime page set.
type RegistryService interface {
	Init() error
	Pages() ([]model.PageDefinition, error)
	PageKeys() ([]model.Page, error)
	Projection() (*model.PlatformRegistry, error)
	AddPage(actor Actor, req *AddPageRequest) (*model.PageDefinition, error)
	RemovePage(actor Actor, key model.Page) error
	ValidateMatrix(m *model.ResponsibilityMatrix) error
}

type AddPageRequest struct {
	Key   model.Page `json:"key" validate:"required,page_key"`
	Label string     `json:"label" validate:"required,max=100"`
}

type registryService struct {
	db        *gorm.DB
	pageRepo  repository.PageRepository
	adminRepo repository.AdminRepository
	audit     AuditService
	publisher EventPublisher
	metrics   *metrics.Metrics
}

func NewRegistryService(
	db *gorm.DB,
	pageRepo repository.PageRepository,
	adminRepo repository.AdminRepository,
	audit AuditService,
	publisher EventPublisher,
	m *metrics.Metrics,
) RegistryService {
	return &registryService{
		db:        db,
		pageRepo:  pageRepo,
		adminRepo: adminRepo,
		audit:     audit,
		publisher: publisherOrNop(publisher),
		metrics:   m,
	}
}

// Init seeds the default pages into an empty registry.
func (s *registryService) Init() error {
	return s.pageRepo.SeedDefaults()
}

func (s *registryService) Pages() ([]model.PageDefinition, error) {
	return s.pageRepo.FindAll()
}

func (s *registryService) PageKeys() ([]model.Page, error) {
	pages, err := s.pageRepo.FindAll()
	if err != nil {
		return nil, err
	}
	keys := make([]model.Page, len(pages))
	for i, p := range pages {
		keys[i] = p.Key
	}
	return keys, nil
}

func (s *registryService) Projection() (*model.PlatformRegistry, error) {
	pages, err := s.pageRepo.FindAll()
	if err != nil {
		return nil, err
	}
	return &model.PlatformRegistry{
		Features:           model.AllFeatures(),
		Roles:              model.AllUserRoles(),
		RoleDelegations:    model.AllRoleDelegations(),
		Pages:              pages,
		NavigationControls: model.AllNavigationControls(),
	}, nil
}

// AddPage registers a new page. Existing matrices are left untouched, so the
// page stays denied for every admin until granted explicitly.
func (s *registryService) AddPage(actor Actor, req *AddPageRequest) (*model.PageDefinition, error) {
	if !actor.IsSuperAdmin() {
		return nil, ErrUnauthorizedOperation
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	page := &model.PageDefinition{Key: req.Key, Label: req.Label, CreatedBy: actor.Label()}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		pages := s.pageRepo.WithTx(tx)
		if _, err := pages.FindByKey(req.Key); err == nil {
			return ErrPageExists
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}
		if err := pages.Create(page); err != nil {
			return err
		}
		return s.audit.Record(tx, &model.AuditLog{
			PerformedBy: actor.Label(),
			Action:      model.ActionAddPage,
			Details:     fmt.Sprintf("Registered page %q (%s)", page.Key, page.Label),
			EntityType:  model.EntityPermission,
			EntityID:    string(page.Key),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAuditEntry(string(model.EntityPermission))
	s.publisher.Publish(ws.Event{
		Type:     "registry_update",
		Action:   "page_added",
		EntityID: string(page.Key),
		Data:     page,
		Actor:    actor.Label(),
	})
	return page, nil
}

// RemovePage drops a page from the registry and clears its entries from
// every stored matrix, so a page later registered under the same key starts
// denied.
func (s *registryService) RemovePage(actor Actor, key model.Page) error {
	if !actor.IsSuperAdmin() {
		return ErrUnauthorizedOperation
	}

	var cleared []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.pageRepo.WithTx(tx).Delete(key); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		admins := s.adminRepo.WithTx(tx)
		all, err := admins.FindAll()
		if err != nil {
			return err
		}
		for i := range all {
			admin := &all[i]
			m := admin.ResponsibilityMatrix().Clone()
			if !m.DropPage(key) {
				continue
			}
			admin.SetResponsibilityMatrix(m)
			admin.UpdatedBy = actor.Label()
			if err := admins.Update(admin); err != nil {
				return err
			}
			cleared = append(cleared, admin.Email)
		}

		details := fmt.Sprintf("Removed page %q from the registry", key)
		if len(cleared) > 0 {
			details += fmt.Sprintf("; cleared from %d matrices", len(cleared))
		}
		return s.audit.Record(tx, &model.AuditLog{
			PerformedBy: actor.Label(),
			Action:      model.ActionRemovePage,
			Details:     details,
			EntityType:  model.EntityPermission,
			EntityID:    string(key),
		})
	})
	if err != nil {
		return err
	}

	s.metrics.RecordAuditEntry(string(model.EntityPermission))
	s.publisher.Publish(ws.Event{
		Type:     "registry_update",
		Action:   "page_removed",
		EntityID: string(key),
		Data:     cleared,
		Actor:    actor.Label(),
	})
	return nil
}

// ValidateMatrix rejects matrices that reference values outside the
// registry or enable a page for others without granting it to the owner.
func (s *registryService) ValidateMatrix(m *model.ResponsibilityMatrix) error {
	if m == nil {
		return &ValidationError{Problems: []string{"responsibility matrix is required"}}
	}
	keys, err := s.PageKeys()
	if err != nil {
		return err
	}
	known := make(map[model.Page]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	verr := &ValidationError{}

	features := make([]string, 0, len(m.FeatureAuthority))
	for f := range m.FeatureAuthority {
		features = append(features, string(f))
	}
	sort.Strings(features)
	for _, f := range features {
		if !model.Feature(f).IsValid() {
			verr.add(fmt.Sprintf("unknown feature %q", f))
		}
	}

	pages := make([]string, 0, len(m.PageAuthority))
	for p := range m.PageAuthority {
		pages = append(pages, string(p))
	}
	sort.Strings(pages)
	for _, p := range pages {
		if !known[model.Page(p)] {
			verr.add(fmt.Sprintf("unknown page %q in page authority", p))
		}
	}

	navPages := make([]string, 0, len(m.NavigationControl))
	for p := range m.NavigationControl {
		navPages = append(navPages, string(p))
	}
	sort.Strings(navPages)
	for _, p := range navPages {
		page := model.Page(p)
		nav := m.NavigationControl[page]
		switch {
		case !known[page]:
			verr.add(fmt.Sprintf("unknown page %q in navigation control", p))
		case !nav.IsValid():
			verr.add(fmt.Sprintf("unknown navigation control %q for page %q", nav, p))
		case nav == model.NavEnable && !m.PageAuthority[page]:
			verr.add(fmt.Sprintf("page %q cannot be enabled for others without page authority", p))
		}
	}

	sets := []struct {
		name  string
		roles []model.RoleDelegation
	}{
		{"can_create", m.RoleDelegation.CanCreate},
		{"can_assign_permissions", m.RoleDelegation.CanAssignPermissions},
		{"can_view_only", m.RoleDelegation.CanViewOnly},
	}
	for _, set := range sets {
		seen := make(map[model.RoleDelegation]bool)
		for _, r := range set.roles {
			if !r.IsValid() {
				verr.add(fmt.Sprintf("unknown role %q in %s", r, set.name))
				continue
			}
			if seen[r] {
				verr.add(fmt.Sprintf("role %q listed twice in %s", r, set.name))
			}
			seen[r] = true
		}
	}

	return verr.orNil()
}

// validateRequest runs the struct tags through pkg/validator.
func validateRequest(req interface{}) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	verr := &ValidationError{}
	for _, e := range errs {
		verr.add(fmt.Sprintf("field '%s' failed on tag '%s'", e.FailedField, e.Tag))
	}
	return verr
}
