package models

import (
	"fmt"
	"strings"
	"time"
)

// Roles a user can hold.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is an account that can sign in as a student, teacher or admin.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Surname   string    `gorm:"size:50;not null" json:"surname"`
	Email     string    `gorm:"size:50;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:10;not null;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName joins name and surname the way it is shown to other users.
func (u User) DisplayName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", u.Name, u.Surname))
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}
