package model

import "slices"

// RoleDelegationSets holds the sub-roles an admin may create, assign
// permissions to, or only view. A role may sit in more than one set.
type RoleDelegationSets struct {
	CanCreate            []RoleDelegation `json:"can_create"`
	CanAssignPermissions []RoleDelegation `json:"can_assign_permissions"`
	CanViewOnly          []RoleDelegation `json:"can_view_only"`
}

// Set returns the delegation set selected by action, nil for an unknown action.
func (s RoleDelegationSets) Set(action DelegationAction) []RoleDelegation {
	switch action {
	case DelegationCreate:
		return s.CanCreate
	case DelegationAssign:
		return s.CanAssignPermissions
	case DelegationView:
		return s.CanViewOnly
	}
	return nil
}

// ResponsibilityMatrix is the complete permission profile of one administrator.
// Absent keys mean deny (or hide for navigation).
type ResponsibilityMatrix struct {
	FeatureAuthority  map[Feature]bool           `json:"feature_authority"`
	PageAuthority     map[Page]bool              `json:"page_authority"`
	NavigationControl map[Page]NavigationControl `json:"navigation_control"`
	RoleDelegation    RoleDelegationSets         `json:"role_delegation"`
}

// NewResponsibilityMatrix returns an all-deny matrix.
func NewResponsibilityMatrix() ResponsibilityMatrix {
	return ResponsibilityMatrix{
		FeatureAuthority:  map[Feature]bool{},
		PageAuthority:     map[Page]bool{},
		NavigationControl: map[Page]NavigationControl{},
		RoleDelegation: RoleDelegationSets{
			CanCreate:            []RoleDelegation{},
			CanAssignPermissions: []RoleDelegation{},
			CanViewOnly:          []RoleDelegation{},
		},
	}
}

// Clone returns a deep copy so stored matrices never alias caller input.
func (m ResponsibilityMatrix) Clone() ResponsibilityMatrix {
	out := NewResponsibilityMatrix()
	for k, v := range m.FeatureAuthority {
		out.FeatureAuthority[k] = v
	}
	for k, v := range m.PageAuthority {
		out.PageAuthority[k] = v
	}
	for k, v := range m.NavigationControl {
		out.NavigationControl[k] = v
	}
	out.RoleDelegation.CanCreate = append(out.RoleDelegation.CanCreate, m.RoleDelegation.CanCreate...)
	out.RoleDelegation.CanAssignPermissions = append(out.RoleDelegation.CanAssignPermissions, m.RoleDelegation.CanAssignPermissions...)
	out.RoleDelegation.CanViewOnly = append(out.RoleDelegation.CanViewOnly, m.RoleDelegation.CanViewOnly...)
	return out
}

// Delegates reports whether role is a member of the set selected by action.
func (s RoleDelegationSets) Delegates(action DelegationAction, role RoleDelegation) bool {
	return slices.Contains(s.Set(action), role)
}

// RestrictPages returns a copy keeping page and navigation entries only for
// pages in live. Entries for removed pages resolve to deny and hide.
func (m ResponsibilityMatrix) RestrictPages(live []Page) ResponsibilityMatrix {
	out := m.Clone()
	for p := range out.PageAuthority {
		if !slices.Contains(live, p) {
			delete(out.PageAuthority, p)
		}
	}
	for p := range out.NavigationControl {
		if !slices.Contains(live, p) {
			delete(out.NavigationControl, p)
		}
	}
	return out
}

// DropPage removes every entry for page and reports whether any existed.
func (m *ResponsibilityMatrix) DropPage(page Page) bool {
	_, granted := m.PageAuthority[page]
	_, shown := m.NavigationControl[page]
	delete(m.PageAuthority, page)
	delete(m.NavigationControl, page)
	return granted || shown
}
