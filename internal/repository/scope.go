package repository

import (
	"strings"

	"github.com/civdef/volunteer-portal/internal/access"
)

// DistrictScope is the storage-level form of a caller's visibility.
// All lifts the restriction, None matches nothing, and otherwise only
// rows in District are read.
type DistrictScope struct {
	District string
	All      bool
	None     bool
}

// ScopeFor derives the query scope of p.
func ScopeFor(p access.Principal) DistrictScope {
	d, all, none := access.QueryDistrict(p.Role, p.District)
	return DistrictScope{District: d, All: all, None: none}
}

// AllDistricts is the scope used by internal jobs such as seeding.
var AllDistricts = DistrictScope{All: true}

// where appends the district condition for column to a WHERE list.
func (s DistrictScope) where(column string, where []string, args []any) ([]string, []any) {
	if s.All {
		return where, args
	}
	return append(where, column+" = ?"), append(args, s.District)
}

func joinWhere(where []string) string {
	if len(where) == 0 {
		return "1=1"
	}
	return strings.Join(where, " AND ")
}
