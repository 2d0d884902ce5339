package prediction

import "strings"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Actor is the caller requesting settlement.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// SystemActor is used by scheduled jobs.
var SystemActor = Actor{ID: "system", Role: RoleSystem}

// CanSettle is the only authorization rule the settlement flow needs:
// admins and the system settle anything, users only their own posts.
func CanSettle(actor Actor, post Post) bool {
	switch actor.Role {
	case RoleAdmin, RoleSystem:
		return true
	case RoleUser:
		id := strings.TrimSpace(actor.ID)
		return id != "" && id == strings.TrimSpace(post.AuthorID)
	default:
		return false
	}
}
