package access

import "github.com/civdef/volunteer-portal/internal/model"

// Districted is implemented by every entity that belongs to exactly one
// district.
type Districted interface {
	DistrictKey() string
}

// Filter restricts records to what role may see from userDistrict.
//
// State scope returns records as given.  District scope keeps the records
// whose district equals userDistrict exactly.  Every other scope gets an
// empty, non-nil slice.  Filter never mutates its input.
func Filter[T Districted](records []T, role model.Role, userDistrict string) []T {
	switch Resolve(role).Scope {
	case ScopeState:
		return records
	case ScopeDistrict:
		out := make([]T, 0, len(records))
		for _, r := range records {
			if r.DistrictKey() == userDistrict {
				out = append(out, r)
			}
		}
		return out
	default:
		return []T{}
	}
}

// CanSee reports whether a single record is inside role's scope.  It
// agrees with Filter for a one-element collection.
func CanSee(rec Districted, role model.Role, userDistrict string) bool {
	switch Resolve(role).Scope {
	case ScopeState:
		return true
	case ScopeDistrict:
		return rec.DistrictKey() == userDistrict
	default:
		return false
	}
}

// QueryDistrict converts a role's scope into a storage-level district
// restriction.  all=true means no restriction; otherwise only rows in
// district may be read, and none=true means nothing may be read.
func QueryDistrict(role model.Role, userDistrict string) (district string, all bool, none bool) {
	switch Resolve(role).Scope {
	case ScopeState:
		return "", true, false
	case ScopeDistrict:
		if userDistrict == "" {
			return "", false, true
		}
		return userDistrict, false, false
	default:
		return "", false, true
	}
}
