package authz

import "go-restaurant-authz/internal/model"

// PageAccess is the evaluated state of one registered page.
type PageAccess struct {
	Page       model.Page              `json:"page"`
	Allowed    bool                    `json:"allowed"`
	Navigation model.NavigationControl `json:"navigation"`
}

// Delegation lists the sub-roles granted per delegation action.
type Delegation struct {
	Create []model.RoleDelegation `json:"create"`
	Assign []model.RoleDelegation `json:"assign"`
	View   []model.RoleDelegation `json:"view"`
}

// Snapshot is every decision the evaluator makes for one role and matrix
// across the registry vocabulary. The front end renders navigation from it.
type Snapshot struct {
	Role       model.UserRole         `json:"role"`
	Features   map[model.Feature]bool `json:"features"`
	Pages      []PageAccess           `json:"pages"`
	Delegation Delegation             `json:"delegation"`
}

// TakeSnapshot evaluates every feature, registered page and delegation.
func TakeSnapshot(e Evaluator, role model.UserRole, m *model.ResponsibilityMatrix, pages []model.Page) Snapshot {
	s := Snapshot{
		Role:     role,
		Features: make(map[model.Feature]bool),
		Pages:    make([]PageAccess, 0, len(pages)),
		Delegation: Delegation{
			Create: []model.RoleDelegation{},
			Assign: []model.RoleDelegation{},
			View:   []model.RoleDelegation{},
		},
	}

	for _, f := range model.AllFeatures() {
		s.Features[f] = e.HasFeatureAuthority(role, m, f)
	}
	for _, p := range pages {
		s.Pages = append(s.Pages, PageAccess{
			Page:       p,
			Allowed:    e.HasPageAuthority(role, m, p),
			Navigation: e.NavigationControl(role, m, p),
		})
	}
	for _, r := range model.AllRoleDelegations() {
		if e.CanDelegate(role, m, r, model.DelegationCreate) {
			s.Delegation.Create = append(s.Delegation.Create, r)
		}
		if e.CanDelegate(role, m, r, model.DelegationAssign) {
			s.Delegation.Assign = append(s.Delegation.Assign, r)
		}
		if e.CanDelegate(role, m, r, model.DelegationView) {
			s.Delegation.View = append(s.Delegation.View, r)
		}
	}
	return s
}
