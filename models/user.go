package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

const (
	AuthProviderPassword = "password"
	AuthProviderGoogle   = "google"
	AuthProviderSupabase = "supabase"
)

type User struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Name                string     `json:"name"`
	Role                Role       `json:"role"`
	Status              UserStatus `json:"status"`
	StudentNo           string     `json:"student_no,omitempty"`
	Department          string     `json:"department,omitempty"`
	Phone               string     `json:"phone,omitempty"`
	ResumeKey           string     `json:"resume_key,omitempty"`
	AuthProvider        string     `json:"auth_provider"`
	ResetTokenHash      string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   string
	Status string
	Search string
	Page   Page
}

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,password"`
	Name       string `json:"name" validate:"required,min=2,max=120"`
	StudentNo  string `json:"student_no" validate:"omitempty,studentno"`
	Department string `json:"department" validate:"max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
	Code    string `json:"code"`
}

type SupabaseLoginRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

type UpdateProfileRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=120"`
	Phone      string `json:"phone" validate:"max=32"`
	Department string `json:"department" validate:"max=120"`
	StudentNo  string `json:"student_no" validate:"omitempty,studentno"`
}

type CreateUserRequest struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,password"`
	Name       string `json:"name" validate:"required,min=2,max=120"`
	Role       string `json:"role" validate:"required,role"`
	StudentNo  string `json:"student_no" validate:"omitempty,studentno"`
	Department string `json:"department" validate:"max=120"`
	Phone      string `json:"phone" validate:"max=32"`
}

type UpdateUserRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=120"`
	Role       string `json:"role" validate:"required,role"`
	StudentNo  string `json:"student_no" validate:"omitempty,studentno"`
	Department string `json:"department" validate:"max=120"`
	Phone      string `json:"phone" validate:"max=32"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}
