package models

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID   string
	Role string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
