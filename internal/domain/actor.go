package domain

const (
	RoleUser            = "user"
	RoleAdmin           = "admin"
	RoleForensicAnalyst = "forensic_analyst"
)

// Actor is the authenticated identity performing a custody operation. It is
// supplied by the identity provider and recorded verbatim, never re-derived.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
