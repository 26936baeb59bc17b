package authz

import "go-restaurant-authz/internal/model"

// MatchMode chooses how a Requirement combines its checks.
type MatchMode int

const (
	MatchAll MatchMode = iota
	MatchAny
)

// Requirement describes what a protected route or view needs.
type Requirement struct {
	Features []model.Feature
	Pages    []model.Page
	Mode     MatchMode
}

// RequireFeatures builds a MatchAll requirement over features.
func RequireFeatures(features ...model.Feature) Requirement {
	return Requirement{Features: features, Mode: MatchAll}
}

// RequirePages builds a MatchAll requirement over pages.
func RequirePages(pages ...model.Page) Requirement {
	return Requirement{Pages: pages, Mode: MatchAll}
}

// Any switches the requirement to MatchAny.
func (r Requirement) Any() Requirement {
	r.Mode = MatchAny
	return r
}

// Allowed evaluates the requirement. A requirement with no checks is allowed.
func (r Requirement) Allowed(e Evaluator, role model.UserRole, m *model.ResponsibilityMatrix) bool {
	total := len(r.Features) + len(r.Pages)
	if total == 0 {
		return true
	}

	granted := 0
	for _, f := range r.Features {
		if e.HasFeatureAuthority(role, m, f) {
			granted++
		}
	}
	for _, p := range r.Pages {
		if e.HasPageAuthority(role, m, p) {
			granted++
		}
	}

	if r.Mode == MatchAny {
		return granted > 0
	}
	return granted == total
}
