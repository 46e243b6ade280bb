package models

// Identity is what the identity provider vouches for: a subject and an email.
type Identity struct {
	Subject string
	Email   string
}

// Principal is the authorization view of the calling user. It is passed by
// value so handlers and services cannot mutate the caller's role.
type Principal struct {
	ID             string
	Role           UserRole
	ApprovalStatus ApprovalStatus
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// HasRole reports whether p holds one of roles. Admins always match.
func (p Principal) HasRole(roles ...UserRole) bool {
	if p.IsAdmin() {
		return true
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
