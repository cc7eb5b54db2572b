package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/vortex07x/steamsurf/internal/auth"
	"github.com/vortex07x/steamsurf/internal/model"
	"github.com/vortex07x/steamsurf/internal/repository"
	"github.com/vortex07x/steamsurf/pkg/hash"
)

const (
	MinPasswordLength = 6
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)
)

// TokenIssuer is implemented by auth.TokenManager.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Parse(token string) (string, error)
}

// AuthService handles accounts, sessions and password resets.
type AuthService struct {
	users   UserStore
	tokens  TokenIssuer
	otps    OTPStore
	mailer  Mailer
	otpTTL  time.Duration
	newCode func() (string, error)
}

func NewAuthService(users UserStore, tokens TokenIssuer, otps OTPStore, mailer Mailer, otpTTL time.Duration) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		otps:    otps,
		mailer:  mailer,
		otpTTL:  otpTTL,
		newCode: generateOTP,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("Email is required")
	}
	if len(email) > 255 || !emailPattern.MatchString(email) {
		return invalid("Please provide a valid email")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// Register creates a user account and signs it in.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := normalizeEmail(req.Email)

	if username == "" || email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, invalid("Please provide all required fields")
	}
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength || !usernamePattern.MatchString(username) {
		return nil, invalid(fmt.Sprintf("Username must be %d-%d characters of letters, digits, '.', '_' or '-'", MinUsernameLength, MaxUsernameLength))
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, invalid("Passwords do not match")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, newError(ErrConflict, "Email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(ErrConflict, "Username already taken")
	}

	pwHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         model.RoleUser,
		Mode:         model.ModePrivate,
		IsActive:     true,
	})
	if err != nil {
		return nil, duplicateUser(err)
	}

	return s.session(u)
}

// duplicateUser names the column behind a unique violation on users.
func duplicateUser(err error) error {
	if !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	if strings.Contains(err.Error(), repository.UsersUsernameKey) {
		return newError(ErrConflict, "Username already taken")
	}
	return newError(ErrConflict, "Email already registered")
}

// Login verifies credentials and records the login time.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("Please provide email and password")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newError(ErrUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, newError(ErrUnauthorized, "Invalid credentials")
	}
	if !u.IsActive {
		return nil, newError(ErrUnauthorized, "Account has been deactivated")
	}

	u, err = s.users.TouchLastLogin(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *AuthService) session(u *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: u, Token: token}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, newError(ErrUnauthorized, "Not authorized, no token")
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, newError(ErrUnauthorized, "Not authorized, token failed")
	}
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newError(ErrUnauthorized, "User not found")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, newError(ErrUnauthorized, "Account has been deactivated")
	}
	return u, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

// UpdateMode switches the caller between private and public mode.
func (s *AuthService) UpdateMode(ctx context.Context, userID string, mode model.Mode) (*model.User, error) {
	if !model.ValidModes[mode] {
		return nil, invalid(`Invalid mode. Must be "private" or "public"`)
	}
	u, err := s.users.UpdateMode(ctx, userID, mode)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

// UpdateEmail changes the caller's own email.
func (s *AuthService) UpdateEmail(ctx context.Context, userID, email string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateEmail(ctx, userID, email)
	if err != nil {
		return nil, notFound(conflict(err, "Email already in use"), "User not found")
	}
	return u, nil
}

// ForgotPassword issues a one-time code and emails it. A previous code for
// the same address is replaced.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return invalid("Please provide email address")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "No account found with this email")
	}
	if !u.IsActive {
		return invalid("Account has been deactivated")
	}

	code, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.otps.Put(ctx, email, hash.OTPDigest(email, code), s.otpTTL); err != nil {
		return err
	}
	if err := s.mailer.SendOTP(ctx, u.Email, u.Username, code); err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("otp email failed")
		if delErr := s.otps.Delete(ctx, email); delErr != nil {
			log.Warn().Err(delErr).Msg("otp cleanup failed")
		}
		return newError(ErrUpstream, "Failed to send OTP email")
	}
	return nil
}

// VerifyOTP checks a code without consuming it.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(code) == "" {
		return invalid("Please provide email and OTP")
	}
	return s.checkOTP(ctx, email, strings.TrimSpace(code))
}

// ResetPassword consumes a valid code and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return invalid("Please provide all required fields")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if err := s.checkOTP(ctx, email, code); err != nil {
		return err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "User not found")
	}
	pwHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.UpdatePassword(ctx, u.ID, pwHash); err != nil {
		return notFound(err, "User not found")
	}
	if err := s.otps.Delete(ctx, email); err != nil {
		log.Warn().Err(err).Msg("otp delete failed")
	}
	return nil
}

func (s *AuthService) checkOTP(ctx context.Context, email, code string) error {
	stored, ok, err := s.otps.Get(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("OTP not found or expired")
	}
	want := hash.OTPDigest(email, code)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(want)) != 1 {
		return invalid("Invalid OTP")
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
