package entity

import "time"

// Role names used in JWT claims and route guards.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a dashboard account belonging to an org.
type User struct {
	ID           string    `json:"id" firestore:"id"`
	OrgID        string    `json:"org_id" firestore:"orgId"`
	Email        string    `json:"email" firestore:"email"`
	Name         string    `json:"name" firestore:"name"`
	PasswordHash string    `json:"-" firestore:"passwordHash,omitempty"`
	GoogleSub    string    `json:"-" firestore:"googleSub,omitempty"`
	Roles        []string  `json:"roles" firestore:"roles"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}
