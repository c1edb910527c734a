package models

// Role values returned by the auth endpoints.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity persisted alongside the session token.
type User struct {
	ID       string `json:"_id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Role     string `json:"role" yaml:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	ID       string `json:"_id"`
}

// User extracts the identity part of the login response.
func (r LoginResponse) User() User {
	return User{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		Role:     r.Role,
	}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the body returned by POST /auth/register. The API
// answers 2xx with AlreadyExists set when the email is taken.
type RegisterResponse struct {
	ID            string `json:"_id,omitempty"`
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	AlreadyExists bool   `json:"alreadyExists,omitempty"`
}
