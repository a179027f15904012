package access

import "github.com/civdef/volunteer-portal/internal/model"

// Principal is the authenticated caller of a single request.  It is built
// from the access token by the auth middleware and passed explicitly to
// everything that needs it.
type Principal struct {
	UserID   string     `json:"userId"`
	Role     model.Role `json:"role"`
	District string     `json:"district,omitempty"`
}

// Caps resolves the principal's capability record.
func (p Principal) Caps() Capabilities { return Resolve(p.Role) }

// Sees reports whether rec is inside the principal's district scope.
func (p Principal) Sees(rec Districted) bool { return CanSee(rec, p.Role, p.District) }
