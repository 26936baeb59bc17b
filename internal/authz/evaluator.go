// Package authz answers "may this role, holding this matrix, do X".
// Decisions are pure functions of their arguments and always fail closed.
package authz

import "go-restaurant-authz/internal/model"

// Evaluator is the decision API consulted by the guard and the handlers.
// Implementations never panic and never return errors; a nil matrix or a
// missing key resolves to deny (or hide).
type Evaluator interface {
	HasFeatureAuthority(role model.UserRole, m *model.ResponsibilityMatrix, feature model.Feature) bool
	HasPageAuthority(role model.UserRole, m *model.ResponsibilityMatrix, page model.Page) bool
	NavigationControl(role model.UserRole, m *model.ResponsibilityMatrix, page model.Page) model.NavigationControl
	CanDelegate(role model.UserRole, m *model.ResponsibilityMatrix, sub model.RoleDelegation, action model.DelegationAction) bool
}

// New returns the matrix evaluator wrapped by the Super Admin bypass.
func New() Evaluator {
	return superAdminBypass{next: matrixEvaluator{}}
}

// superAdminBypass is the only place Super Admin authority is granted.
type superAdminBypass struct {
	next Evaluator
}

func (b superAdminBypass) HasFeatureAuthority(role model.UserRole, m *model.ResponsibilityMatrix, feature model.Feature) bool {
	if role == model.RoleSuperAdmin {
		return true
	}
	return b.next.HasFeatureAuthority(role, m, feature)
}

func (b superAdminBypass) HasPageAuthority(role model.UserRole, m *model.ResponsibilityMatrix, page model.Page) bool {
	if role == model.RoleSuperAdmin {
		return true
	}
	return b.next.HasPageAuthority(role, m, page)
}

func (b superAdminBypass) NavigationControl(role model.UserRole, m *model.ResponsibilityMatrix, page model.Page) model.NavigationControl {
	if role == model.RoleSuperAdmin {
		return model.NavSee
	}
	return b.next.NavigationControl(role, m, page)
}

func (b superAdminBypass) CanDelegate(role model.UserRole, m *model.ResponsibilityMatrix, sub model.RoleDelegation, action model.DelegationAction) bool {
	if role == model.RoleSuperAdmin {
		return action.IsValid()
	}
	return b.next.CanDelegate(role, m, sub, action)
}

// matrixEvaluator reads the supplied matrix and nothing else.
type matrixEvaluator struct{}

func (matrixEvaluator) HasFeatureAuthority(_ model.UserRole, m *model.ResponsibilityMatrix, feature model.Feature) bool {
	if m == nil {
		return false
	}
	return m.FeatureAuthority[feature]
}

func (matrixEvaluator) HasPageAuthority(_ model.UserRole, m *model.ResponsibilityMatrix, page model.Page) bool {
	if m == nil {
		return false
	}
	return m.PageAuthority[page]
}

func (matrixEvaluator) NavigationControl(_ model.UserRole, m *model.ResponsibilityMatrix, page model.Page) model.NavigationControl {
	if m == nil {
		return model.NavHide
	}
	nav, ok := m.NavigationControl[page]
	if !ok || !nav.IsValid() {
		return model.NavHide
	}
	return nav
}

func (matrixEvaluator) CanDelegate(_ model.UserRole, m *model.ResponsibilityMatrix, sub model.RoleDelegation, action model.DelegationAction) bool {
	return CanDelegateRole(m, sub, action)
}

// CanDelegateRole reports whether the matrix lets its owner perform action on
// the given sub-role. Unknown actions and nil matrices deny.
func CanDelegateRole(m *model.ResponsibilityMatrix, role model.RoleDelegation, action model.DelegationAction) bool {
	if m == nil {
		return false
	}
	return m.RoleDelegation.Delegates(action, role)
}
