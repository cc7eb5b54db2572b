package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/vortex07x/steamsurf/internal/middleware"
	"github.com/vortex07x/steamsurf/internal/model"
)

// AccountService is the account surface used by AuthHandler.
type AccountService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	UpdateMode(ctx context.Context, userID string, mode model.Mode) (*model.User, error)
	UpdateEmail(ctx context.Context, userID, email string) (*model.User, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type AuthHandler struct {
	svc AccountService
}

func NewAuthHandler(svc AccountService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	resp, err := h.svc.Register(c.Context(), req)
	if err != nil {
		return fail(c, err, "Error registering user")
	}
	return ok(c, fiber.StatusCreated, "User registered successfully", resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	resp, err := h.svc.Login(c.Context(), req)
	if err != nil {
		return fail(c, err, "Error logging in")
	}
	return ok(c, fiber.StatusOK, "Login successful", resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c fiber.Ctx) error {
	u, err := h.svc.Me(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err, "Error fetching user")
	}
	return ok(c, fiber.StatusOK, "", u)
}

// UpdateMode handles PUT /api/auth/mode
func (h *AuthHandler) UpdateMode(c fiber.Ctx) error {
	var req model.ModeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	u, err := h.svc.UpdateMode(c.Context(), middleware.UserID(c), req.Mode)
	if err != nil {
		return fail(c, err, "Error updating mode")
	}
	return ok(c, fiber.StatusOK, "Mode updated to "+string(u.Mode), u)
}

// UpdateEmail handles PUT /api/auth/email
func (h *AuthHandler) UpdateEmail(c fiber.Ctx) error {
	var req model.EmailRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	u, err := h.svc.UpdateEmail(c.Context(), middleware.UserID(c), req.Email)
	if err != nil {
		return fail(c, err, "Error updating email")
	}
	return ok(c, fiber.StatusOK, "Email updated successfully", u)
}

// Logout handles POST /api/auth/logout. Tokens are stateless; the client
// discards its copy.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	return ok(c, fiber.StatusOK, "Logged out successfully", nil)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var req model.ForgotPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.svc.ForgotPassword(c.Context(), req.Email); err != nil {
		return fail(c, err, "Error processing request")
	}
	return ok(c, fiber.StatusOK, "OTP sent to your email", nil)
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c fiber.Ctx) error {
	var req model.VerifyOTPRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.svc.VerifyOTP(c.Context(), req.Email, req.OTP); err != nil {
		return fail(c, err, "Error verifying OTP")
	}
	return ok(c, fiber.StatusOK, "OTP verified successfully", nil)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req model.ResetPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.svc.ResetPassword(c.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		return fail(c, err, "Error resetting password")
	}
	return ok(c, fiber.StatusOK, "Password reset successfully", nil)
}
