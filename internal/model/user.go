package model

import "time"

// Role is the privilege level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Mode is the per-user visibility switch gating catalog access in the client.
type Mode string

const (
	ModePrivate Mode = "private"
	ModePublic  Mode = "public"
)

// ValidRoles are the allowed role values.
var ValidRoles = map[Role]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

// ValidModes are the allowed mode values.
var ValidModes = map[Mode]bool{
	ModePrivate: true,
	ModePublic:  true,
}

// User represents a registered SteamSurf account.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Mode         Mode       `json:"mode"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest is the API request body for account creation.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the API request body for signing in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after register and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// ModeRequest changes the caller's visibility mode.
type ModeRequest struct {
	Mode Mode `json:"mode"`
}

// EmailRequest changes an account email (self or admin).
type EmailRequest struct {
	Email string `json:"email"`
}

// RoleRequest changes an account role (admin only).
type RoleRequest struct {
	Role Role `json:"role"`
}

// StatusRequest activates or deactivates an account (admin only).
type StatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest checks a one-time code without consuming it.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResetPasswordRequest consumes a one-time code and sets a new password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}
