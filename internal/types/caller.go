package types

// Caller is the identity attached to a request by the auth middleware,
// resolved from an Authorizer session. A zero Caller is anonymous.
type Caller struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Approved bool     `json:"approved"`
}

// IsAnonymous reports whether no identity was resolved.
func (c Caller) IsAnonymous() bool {
	return c.ID == ""
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.HasRole("admin")
}

// HasRole reports whether the caller holds the named role.
func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
