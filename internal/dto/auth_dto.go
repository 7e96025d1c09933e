package dto

import "github.com/noah-isme/taskboard-api/internal/models"

// RegisterRequest is the payload accepted by POST /register.
type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=50"`
	Surname  string `json:"surname" form:"surname" validate:"required,max=50"`
	Email    string `json:"email" form:"email" validate:"required,email,max=50"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
	Role     string `json:"role" form:"role" validate:"required,oneof=student teacher admin"`
}

// LoginRequest is the payload accepted by POST /login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SessionUser is the public view of the signed-in user.
type SessionUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// LoginResult carries the authenticated user and, for token based auth, the token.
type LoginResult struct {
	User  SessionUser
	Token string
}

// StudentResponse lists a student as a selectable assignee.
type StudentResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewSessionUser converts a user model into its public session view.
func NewSessionUser(user models.User) SessionUser {
	return SessionUser{ID: user.ID, Name: user.Name, Role: user.Role}
}

// NewStudentResponseSlice converts student models into assignee entries.
func NewStudentResponseSlice(users []models.User) []StudentResponse {
	result := make([]StudentResponse, 0, len(users))
	for _, user := range users {
		result = append(result, StudentResponse{ID: user.ID, Name: user.DisplayName()})
	}
	return result
}
