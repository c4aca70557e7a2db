package policy

import "strings"

// Role is the closed set of workflow roles. Free-form role strings from the
// outside world go through ParseRole exactly once, at the boundary; inside
// the service layer only these values circulate.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleCSR               Role = "csr"
	RoleBuildingExecutive Role = "building_executive"
	RoleTechnician        Role = "technician"
	RoleUnknown           Role = ""
)

var allRoles = []Role{RoleAdmin, RoleCSR, RoleBuildingExecutive, RoleTechnician}

// ParseRole normalizes irregular spellings ("Building-Executive",
// " building_executive ") and returns the matching role. Unrecognized
// spellings map to RoleUnknown.
func ParseRole(s string) Role {
	normalized := NormalizeRole(s)
	for _, r := range allRoles {
		if normalized == string(r) {
			return r
		}
	}
	return RoleUnknown
}

// NormalizeRole lowercases and collapses hyphens/spaces into single
// underscores. Role identifiers historically arrive in irregular casing and
// punctuation, so comparisons only ever happen on the normalized form.
func NormalizeRole(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	for strings.Contains(normalized, "__") {
		normalized = strings.ReplaceAll(normalized, "__", "_")
	}
	return normalized
}

// Valid reports whether s spells one of the four roles, in any accepted form.
func Valid(s string) bool {
	return ParseRole(s) != RoleUnknown
}

func (r Role) String() string { return string(r) }
