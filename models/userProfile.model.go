package models

import "time"

// Roles assignable to a user profile
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

// UserProfile mirrors an identity from the external identity provider. ID is
// the provider's stable uuid; the row is provisioned exactly once, the first
// time the identity shows up on a request.
type UserProfile struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"not null"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	Role      string    `json:"role" gorm:"default:'STUDENT'"` // STUDENT, TEACHER, ADMIN
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
