package model

// Feature is a manageable business capability that can be granted or denied.
type Feature string

const (
	FeatureMenus         Feature = "menus"
	FeatureTables        Feature = "tables"
	FeatureOrders        Feature = "orders"
	FeatureBilling       Feature = "billing"
	FeatureReports       Feature = "reports"
	FeatureInventory     Feature = "inventory"
	FeatureUsers         Feature = "users"
	FeatureTickets       Feature = "tickets"
	FeatureSubscriptions Feature = "subscriptions"
	FeatureAuditLogs     Feature = "audit_logs"
)

var allFeatures = []Feature{
	FeatureMenus,
	FeatureTables,
	FeatureOrders,
	FeatureBilling,
	FeatureReports,
	FeatureInventory,
	FeatureUsers,
	FeatureTickets,
	FeatureSubscriptions,
	FeatureAuditLogs,
}

// AllFeatures returns the feature vocabulary in display order.
func AllFeatures() []Feature {
	return append([]Feature(nil), allFeatures...)
}

func (f Feature) IsValid() bool {
	for _, known := range allFeatures {
		if f == known {
			return true
		}
	}
	return false
}

// RoleDelegation is a sub-role an administrator may create, assign or view.
type RoleDelegation string

const (
	DelegationBranchOwner  RoleDelegation = "branch_owner"
	DelegationCaptain      RoleDelegation = "captain"
	DelegationKitchenStaff RoleDelegation = "kitchen_staff"
)

var allRoleDelegations = []RoleDelegation{
	DelegationBranchOwner,
	DelegationCaptain,
	DelegationKitchenStaff,
}

func AllRoleDelegations() []RoleDelegation {
	return append([]RoleDelegation(nil), allRoleDelegations...)
}

func (r RoleDelegation) IsValid() bool {
	for _, known := range allRoleDelegations {
		if r == known {
			return true
		}
	}
	return false
}

// DelegationAction selects one of the three role delegation sets.
type DelegationAction string

const (
	DelegationCreate DelegationAction = "create"
	DelegationAssign DelegationAction = "assign"
	DelegationView   DelegationAction = "view"
)

func (a DelegationAction) IsValid() bool {
	switch a {
	case DelegationCreate, DelegationAssign, DelegationView:
		return true
	}
	return false
}

// NavigationControl is the per-page visibility flag of a matrix.
type NavigationControl string

const (
	// NavSee: the page is visible to the admin only.
	NavSee NavigationControl = "see"
	// NavEnable: the admin may expose the page in others' navigation.
	NavEnable NavigationControl = "enable"
	// NavHide: the admin may suppress the page for others.
	NavHide NavigationControl = "hide"
)

var allNavigationControls = []NavigationControl{NavSee, NavEnable, NavHide}

func AllNavigationControls() []NavigationControl {
	return append([]NavigationControl(nil), allNavigationControls...)
}

func (n NavigationControl) IsValid() bool {
	switch n {
	case NavSee, NavEnable, NavHide:
		return true
	}
	return false
}

// UserRole is the session role supplied by authentication.
type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleSubAdmin   UserRole = "sub_admin"
	RoleManager    UserRole = "manager"
	RoleChef       UserRole = "chef"
	RoleCook       UserRole = "cook"
	RoleWaiter     UserRole = "waiter"
	RoleGuest      UserRole = "guest"
)

var allUserRoles = []UserRole{
	RoleSuperAdmin,
	RoleAdmin,
	RoleSubAdmin,
	RoleManager,
	RoleChef,
	RoleCook,
	RoleWaiter,
	RoleGuest,
}

func AllUserRoles() []UserRole {
	return append([]UserRole(nil), allUserRoles...)
}

func (r UserRole) IsValid() bool {
	for _, known := range allUserRoles {
		if r == known {
			return true
		}
	}
	return false
}

// PlatformRegistry is the read-only projection of every vocabulary, used to
// render configuration screens.
type PlatformRegistry struct {
	Features           []Feature           `json:"features"`
	Roles              []UserRole          `json:"roles"`
	RoleDelegations    []RoleDelegation    `json:"role_delegations"`
	Pages              []PageDefinition    `json:"pages"`
	NavigationControls []NavigationControl `json:"navigation_controls"`
}

// PageKeys lists the keys of the projected pages.
func (r PlatformRegistry) PageKeys() []Page {
	keys := make([]Page, len(r.Pages))
	for i, p := range r.Pages {
		keys[i] = p.Key
	}
	return keys
}
