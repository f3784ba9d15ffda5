package models

// Actor is the verified identity handed over by the auth layer.
// The core never decodes credentials; it trusts this value.
type Actor struct {
	Id   int      `json:"id"`
	Role UserRole `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}

func (a Actor) Validate() error {
	if a.Id <= 0 {
		return ErrUnauthorized.Withf("actor identity is required")
	}
	return nil
}
