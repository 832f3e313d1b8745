package model

import "strings"

// Role is the effective authorization role of a principal.
type Role string

const (
	RoleEmployee       Role = "employee"
	RoleHR             Role = "hr"
	RoleManager        Role = "manager"
	RoleGeneralManager Role = "general_manager"
)

// ResolveRole maps the free-text role attribute and account flags to an effective role.
// An explicit role string wins; superuser and staff flags only apply when it is absent
// or unrecognized.
func ResolveRole(raw string, isStaff, isSuperuser bool) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "manager", "branch_manager":
		return RoleManager
	case "general_manager":
		return RoleGeneralManager
	case "hr", "human_resources":
		return RoleHR
	}
	if isSuperuser {
		return RoleGeneralManager
	}
	if isStaff {
		return RoleHR
	}
	return RoleEmployee
}

// IsManagement reports manager or general manager.
func (r Role) IsManagement() bool {
	return r == RoleManager || r == RoleGeneralManager
}

// IsSurveyAuthor reports the roles owning a survey silo.
func (r Role) IsSurveyAuthor() bool {
	return r == RoleManager || r == RoleHR
}

// IsTaskCreator reports the roles allowed to create and close tasks.
func (r Role) IsTaskCreator() bool {
	return r == RoleHR || r.IsManagement()
}
