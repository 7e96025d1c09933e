package service

import "github.com/noah-isme/taskboard-api/internal/models"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role string
}

// NewActor builds an actor from a stored user.
func NewActor(user models.User) Actor {
	return Actor{ID: user.ID, Role: user.Role}
}

// IsTeacher reports whether the actor acts as a teacher.
func (a Actor) IsTeacher() bool { return a.ID != 0 && a.Role == models.RoleTeacher }

// IsStudent reports whether the actor acts as a student.
func (a Actor) IsStudent() bool { return a.ID != 0 && a.Role == models.RoleStudent }

// IsAdmin reports whether the actor acts as an admin.
func (a Actor) IsAdmin() bool { return a.ID != 0 && a.Role == models.RoleAdmin }
