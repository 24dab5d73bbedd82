package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dukan/internal/apperror"
	"dukan/internal/metrics"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"go.uber.org/zap"
)

const minPasswordLength = 6

// DeviceInfo identifies the client a login or verification comes from.
type DeviceInfo struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
	UserAgent  string `json:"userAgent"`
	Platform   string `json:"platform"`
	Browser    string `json:"browser"`
}

func (d DeviceInfo) complete() bool {
	return d.DeviceID != "" && d.UserAgent != "" && d.Platform != ""
}

// AuthResult is the outcome of Login and VerifyOTP. Exactly one of Tokens
// and OTPPurpose is set: either the caller is signed in, or an OTP was sent
// and must be verified first.
type AuthResult struct {
	Message    string
	User       *models.User
	Tokens     *TokenPair
	OTPPurpose Purpose
}

// VerifyOTPInput is the body of an OTP verification.
type VerifyOTPInput struct {
	Email   string     `json:"email"`
	OTP     string     `json:"otp"`
	Purpose string     `json:"purpose"`
	Device  DeviceInfo `json:"deviceInfo"`
}

// AuthService owns credentials, one-time passcodes and trusted devices.
type AuthService struct {
	store   repositories.Store
	tokens  *TokenService
	mailer  Mailer
	metrics *metrics.Manager
	log     *zap.Logger
	now     func() time.Time
}

func NewAuthService(store repositories.Store, tokens *TokenService, mailer Mailer, m *metrics.Manager, log *zap.Logger) *AuthService {
	return &AuthService{
		store:   store,
		tokens:  tokens,
		mailer:  mailer,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Register creates an unverified account and mails it a verifyEmail OTP. An
// unverified account whose OTP has lapsed is replaced.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperror.BadRequest("Name, email and password are required")
	}
	if !isEmail(email) {
		return nil, apperror.BadRequest("Invalid email format")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.BadRequest("Password must be at least 6 characters long")
	}

	existing, err := s.store.Users().GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsVerified {
			return nil, apperror.Conflict("User already exists")
		}
		if existing.OTPExpires != nil && s.now().Before(*existing.OTPExpires) {
			return nil, apperror.Forbidden("Please verify your email. An OTP has already been sent")
		}
		if err := s.store.Users().Delete(ctx, existing.ID); err != nil {
			return nil, apperror.Internal("Failed to register user", err)
		}
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, apperror.Internal("Failed to register user", err)
	}

	code, err := generateOTP()
	if err != nil {
		return nil, apperror.Internal("Failed to register user", err)
	}
	expires := s.now().Add(OTPTTL)
	user := &models.User{
		Name:       name,
		Email:      email,
		Role:       models.RoleUser,
		OTP:        code,
		OTPExpires: &expires,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, apperror.Internal("Failed to register user", err)
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Conflict("User already exists")
		}
		return nil, apperror.Internal("Failed to register user", err)
	}

	subject, bodyHTML, bodyText := otpMail(PurposeVerifyEmail, user.Name, code)
	if err := s.mailer.Send(ctx, user.Email, subject, bodyHTML, bodyText); err != nil {
		s.metrics.EmailFailed("otp")
		if derr := s.store.Users().Delete(context.WithoutCancel(ctx), user.ID); derr != nil {
			s.log.Error("failed to roll back registration", zap.String("user_id", user.ID), zap.Error(derr))
		}
		return nil, apperror.Internal("Failed to send verification email. Please try again.", err)
	}
	s.metrics.OTPIssued(string(PurposeVerifyEmail))

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials and, for a trusted device on a verified account,
// signs the user in. Otherwise it sends an OTP and reports which purpose
// must be verified.
func (s *AuthService) Login(ctx context.Context, email, password string, device DeviceInfo) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperror.BadRequest("Email and password are required")
	}
	if !device.complete() {
		return nil, apperror.BadRequest("Device information is required")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to login", err)
	}
	if !user.CheckPassword(password) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	if !user.IsVerified {
		if err := s.issueOTP(ctx, user, PurposeVerifyEmail); err != nil {
			return nil, apperror.Internal("Failed to send verification email", err)
		}
		return &AuthResult{
			Message:    "Your email is not verified. We've sent an OTP to your email.",
			User:       user,
			OTPPurpose: PurposeVerifyEmail,
		}, nil
	}

	if _, trusted := user.ActiveDevice(device.DeviceID); trusted {
		if err := s.store.Users().TouchTrustedDevice(ctx, user.ID, device.DeviceID, s.now()); err != nil {
			return nil, apperror.Internal("Failed to login", err)
		}
		tokens, err := s.tokens.Issue(user)
		if err != nil {
			return nil, apperror.Internal("Failed to login", err)
		}
		s.log.Info("user logged in", zap.String("user_id", user.ID), zap.String("device_id", device.DeviceID))
		return &AuthResult{Message: "User Login Successfully", User: user, Tokens: tokens}, nil
	}

	if err := s.issueOTP(ctx, user, PurposeVerifyDevice); err != nil {
		return nil, apperror.Internal("Failed to send verification email", err)
	}
	return &AuthResult{
		Message:    "We noticed a login attempt from a new device. Please verify with the OTP sent to your email.",
		User:       user,
		OTPPurpose: PurposeVerifyDevice,
	}, nil
}

// VerifyOTP consumes a passcode and applies the side effect of its purpose.
func (s *AuthService) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Email) == "" || in.OTP == "" {
		return nil, apperror.BadRequest("Email and OTP are required")
	}
	if in.Purpose == "" {
		return nil, apperror.BadRequest("OTP purpose is required")
	}
	purpose, err := ParsePurpose(in.Purpose)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to verify OTP", err)
	}
	if !s.otpMatches(user, in.OTP) {
		return nil, apperror.BadRequest("Invalid or expired OTP")
	}

	var trust bool
	switch purpose {
	case PurposeVerifyEmail:
		user.IsVerified = true
		trust = in.Device.DeviceID != ""
	case PurposeVerifyDevice:
		if !user.IsVerified {
			return nil, apperror.BadRequest("Email must be verified before adding device")
		}
		if !in.Device.complete() {
			return nil, apperror.BadRequest("Device information is required")
		}
		trust = true
	case PurposeResetPassword, PurposeForgotPassword:
	}

	user.ClearOTP()
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		if trust {
			return tx.Users().UpsertTrustedDevice(ctx, user.ID, s.trustedDevice(in.Device))
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internal("Failed to verify OTP", err)
	}

	result := &AuthResult{Message: purpose.verifiedMessage(), User: user}
	if purpose.RequiresToken() {
		if result.Tokens, err = s.tokens.Issue(user); err != nil {
			return nil, apperror.Internal("Failed to verify OTP", err)
		}
	}
	s.log.Info("otp verified", zap.String("user_id", user.ID), zap.String("purpose", string(purpose)))
	return result, nil
}

// ResendOTP replaces any pending passcode with a new one for purpose.
func (s *AuthService) ResendOTP(ctx context.Context, email, rawPurpose string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", apperror.BadRequest("Email is required")
	}
	if rawPurpose == "" {
		return "", apperror.BadRequest("OTP purpose is required")
	}
	purpose, err := ParsePurpose(rawPurpose)
	if err != nil {
		return "", err
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", apperror.NotFound("User not found")
	}
	if err != nil {
		return "", apperror.Internal("Failed to resend OTP", err)
	}

	switch purpose {
	case PurposeVerifyEmail:
		if user.IsVerified {
			return "", apperror.BadRequest("Email is already verified")
		}
	case PurposeVerifyDevice:
		if !user.IsVerified {
			return "", apperror.BadRequest("Email must be verified before adding device")
		}
	case PurposeResetPassword, PurposeForgotPassword:
	}

	if err := s.issueOTP(ctx, user, purpose); err != nil {
		return "", apperror.Internal("Failed to send OTP email. Please try again.", err)
	}
	return fmt.Sprintf("New OTP for %s sent successfully", purpose), nil
}

// ForgotPassword sends a forgotPassword OTP, or a verifyEmail OTP when the
// account was never verified.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, apperror.BadRequest("Email is required")
	}
	if !isEmail(email) {
		return nil, apperror.BadRequest("Invalid email format")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("No account found with this email. Please register first.")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to process forgot password", err)
	}

	if !user.IsVerified {
		if err := s.issueOTP(ctx, user, PurposeVerifyEmail); err != nil {
			return nil, apperror.Internal("Failed to send verification email", err)
		}
		return &AuthResult{
			Message:    "Your email is not verified. We've sent a verification OTP to your email.",
			User:       user,
			OTPPurpose: PurposeVerifyEmail,
		}, nil
	}

	if now := s.now(); user.OTPExpires != nil && now.Before(*user.OTPExpires) {
		issuedAt := user.OTPExpires.Add(-OTPTTL)
		if now.Sub(issuedAt) < otpResendInterval {
			return nil, apperror.TooManyRequests("OTP was sent recently. Please wait before requesting a new one.")
		}
	}

	if err := s.issueOTP(ctx, user, PurposeForgotPassword); err != nil {
		return nil, apperror.Internal("Failed to send password reset email", err)
	}
	return &AuthResult{
		Message:    "Password reset OTP has been sent to your email.",
		User:       user,
		OTPPurpose: PurposeForgotPassword,
	}, nil
}

// ResetPassword replaces the password and drops any pending OTP.
func (s *AuthService) ResetPassword(ctx context.Context, email, password, confirmPassword string) error {
	if strings.TrimSpace(email) == "" || password == "" || confirmPassword == "" {
		return apperror.BadRequest("Email, password, and confirm password are required")
	}
	if password != confirmPassword {
		return apperror.BadRequest("Passwords do not match")
	}
	if len(password) < minPasswordLength {
		return apperror.BadRequest("Password must be at least 6 characters long")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFound("User not found")
	}
	if err != nil {
		return apperror.Internal("Failed to reset password", err)
	}

	if err := user.SetPassword(password); err != nil {
		return apperror.Internal("Failed to reset password", err)
	}
	user.ClearOTP()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return apperror.Internal("Failed to reset password", err)
	}

	s.log.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

// RefreshAccessToken mints a new access token from a refresh token.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, *models.User, error) {
	if refreshToken == "" {
		return "", nil, apperror.Unauthorized("Please login to access this resource")
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", nil, apperror.Wrap(http.StatusUnauthorized, "Please login to access this resource", err)
	}

	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, apperror.Unauthorized("Please login to access this resource")
	}
	if err != nil {
		return "", nil, apperror.Internal("Failed to refresh token", err)
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", nil, apperror.Internal("Failed to refresh token", err)
	}
	return access, user, nil
}

// issueOTP mails a fresh code for purpose and stores it. Nothing is stored
// when the mail cannot be sent.
func (s *AuthService) issueOTP(ctx context.Context, user *models.User, purpose Purpose) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}

	subject, bodyHTML, bodyText := otpMail(purpose, user.Name, code)
	if err := s.mailer.Send(ctx, user.Email, subject, bodyHTML, bodyText); err != nil {
		s.metrics.EmailFailed("otp")
		s.log.Warn("failed to send otp", zap.String("user_id", user.ID), zap.String("purpose", string(purpose)), zap.Error(err))
		return err
	}

	expires := s.now().Add(OTPTTL)
	user.OTP, user.OTPExpires = code, &expires
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}
	s.metrics.OTPIssued(string(purpose))
	return nil
}

func (s *AuthService) otpMatches(user *models.User, otp string) bool {
	if user.OTP == "" || user.OTPExpires == nil || !s.now().Before(*user.OTPExpires) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(user.OTP), []byte(otp)) == 1
}

func (s *AuthService) trustedDevice(d DeviceInfo) *models.TrustedDevice {
	return &models.TrustedDevice{
		DeviceID:   d.DeviceID,
		DeviceName: d.DeviceName,
		UserAgent:  d.UserAgent,
		Platform:   d.Platform,
		Browser:    d.Browser,
		LastUsed:   s.now(),
		IsActive:   true,
	}
}
