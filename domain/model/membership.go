package model

// Membership roles
const (
	RoleOwner = "OWNER"
)

// Membership grants a user a role on a project. Every project is created with
// exactly one OWNER membership in the same transactional write.
type Membership struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joinedAt"`
}

// IsOwner reports whether this membership carries the OWNER role
func (m *Membership) IsOwner() bool {
	return m != nil && m.Role == RoleOwner
}
