package auth

// Principal is the authenticated caller of a single request
type Principal struct {
	Subject string
	Roles   []string
}

// NewPrincipal copies roles so the principal does not alias caller memory
func NewPrincipal(subject string, roles []string) *Principal {
	r := make([]string, len(roles))
	copy(r, roles)
	return &Principal{Subject: subject, Roles: r}
}

// HasRole reports whether the principal holds role
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
