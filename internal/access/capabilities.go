// Package access holds the role permission matrix and the district scoping
// rules derived from it.
//
// Authorization rules:
//   - state_admin sees every district and can manage users and site content
//   - department_admin sees every district and can export data
//   - district_admin sees only their own district
//   - volunteer and cms_manager see no district-bound collections; they
//     reach their own records through identity-scoped endpoints
//   - an unknown or missing role gets the volunteer-scope capability set
//     with every permission off
package access

import "github.com/civdef/volunteer-portal/internal/model"

// Scope is the breadth of district-bound data a role may see.
type Scope string

const (
	ScopeVolunteer Scope = "volunteer"
	ScopeDistrict  Scope = "district"
	ScopeState     Scope = "state"
)

// Capabilities is the fixed permission record for a role.  The JSON shape
// is served to the client so both sides use the same table.
type Capabilities struct {
	CanApproveVolunteers bool  `json:"canApproveVolunteers"`
	CanManageIncidents   bool  `json:"canManageIncidents"`
	CanManageInventory   bool  `json:"canManageInventory"`
	CanViewReports       bool  `json:"canViewReports"`
	CanExportData        bool  `json:"canExportData"`
	CanViewAllDistricts  bool  `json:"canViewAllDistricts"`
	CanManageUsers       bool  `json:"canManageUsers"`
	CanManageCMS         bool  `json:"canManageCMS"`
	Scope                Scope `json:"scope"`
}

// restricted is returned for unknown roles.
var restricted = Capabilities{Scope: ScopeVolunteer}

var matrix = map[model.Role]Capabilities{
	model.RoleVolunteer: {Scope: ScopeVolunteer},
	model.RoleDistrictAdmin: {
		CanApproveVolunteers: true,
		CanManageIncidents:   true,
		CanManageInventory:   true,
		CanViewReports:       true,
		Scope:                ScopeDistrict,
	},
	model.RoleDepartmentAdmin: {
		CanApproveVolunteers: true,
		CanManageIncidents:   true,
		CanManageInventory:   true,
		CanViewReports:       true,
		CanExportData:        true,
		CanViewAllDistricts:  true,
		Scope:                ScopeState,
	},
	model.RoleStateAdmin: {
		CanApproveVolunteers: true,
		CanManageIncidents:   true,
		CanManageInventory:   true,
		CanViewReports:       true,
		CanExportData:        true,
		CanViewAllDistricts:  true,
		CanManageUsers:       true,
		CanManageCMS:         true,
		Scope:                ScopeState,
	},
	model.RoleCMSManager: {
		CanManageCMS: true,
		Scope:        ScopeVolunteer,
	},
}

// Resolve returns the capability record for role.  It never fails.
func Resolve(role model.Role) Capabilities {
	if c, ok := matrix[role]; ok {
		return c
	}
	return restricted
}

// Matrix returns a copy of the full role table keyed by role token.
func Matrix() map[model.Role]Capabilities {
	out := make(map[model.Role]Capabilities, len(matrix))
	for r, c := range matrix {
		out[r] = c
	}
	return out
}
