package handlers

import (
	"time"

	"dukan/internal/middleware"
	"dukan/internal/models"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const refreshCookie = "refreshtoken"

// UserHandler serves sign-up, login, OTP flows, the caller's profile and
// admin user management.
type UserHandler struct {
	auth   *services.AuthService
	users  *services.UserService
	tokens *services.TokenService
	log    *zap.Logger
}

func NewUserHandler(auth *services.AuthService, users *services.UserService, tokens *services.TokenService, log *zap.Logger) *UserHandler {
	return &UserHandler{auth: auth, users: users, tokens: tokens, log: log}
}

// RegisterRoutes mounts /user. protect guards the authenticated routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	r := router.Group("/user")
	r.Post("/create-user", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/verify-otp", h.HandleVerifyOTP)
	r.Post("/resend-otp", h.HandleResendOTP)
	r.Post("/forgot-password", h.HandleForgotPassword)
	r.Post("/reset-password", h.HandleResetPassword)
	r.Get("/refresh-token", h.HandleRefreshToken)

	r.Get("/logout", protect, h.HandleLogout)
	r.Get("/profile", protect, h.HandleProfile)
	r.Put("/update-user-info", protect, h.HandleUpdateUserInfo)
	r.Put("/update-user-password", protect, h.HandleChangePassword)
	r.Put("/update-user-avatar", protect, h.HandleUpdateAvatar)
	r.Put("/update-user-addresses", protect, h.HandleUpdateAddress)
	r.Delete("/delete-user-address/:type", protect, h.HandleDeleteAddress)

	r.Get("/admin-all-users", protect, middleware.RequireRole(models.RoleAdmin), h.HandleAdminListUsers)
	r.Delete("/delete-user/:id", protect, middleware.RequireRole(models.RoleAdmin), h.HandleAdminDeleteUser)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email      string              `json:"email"`
	Password   string              `json:"password"`
	DeviceInfo services.DeviceInfo `json:"deviceInfo"`
}

type verifyOTPRequest struct {
	Email      string              `json:"email"`
	OTP        string              `json:"otp"`
	OTPPurpose string              `json:"otpPurpose"`
	DeviceInfo services.DeviceInfo `json:"deviceInfo"`
}

type resendOTPRequest struct {
	Email      string `json:"email"`
	OTPPurpose string `json:"otpPurpose"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type avatarRequest struct {
	UserAvatar string `json:"userAvatar"`
}

func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if _, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "User created successfully. Please check your email for the verification OTP.",
		"otpPurpose": services.PurposeVerifyEmail,
	})
}

func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password, h.device(c, req.DeviceInfo))
	if err != nil {
		return err
	}
	return h.sendAuthResult(c, result)
}

func (h *UserHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.VerifyOTP(c.UserContext(), services.VerifyOTPInput{
		Email:   req.Email,
		OTP:     req.OTP,
		Purpose: req.OTPPurpose,
		Device:  h.device(c, req.DeviceInfo),
	})
	if err != nil {
		return err
	}

	if result.Tokens == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"message": result.Message,
			"data":    fiber.Map{"email": result.User.Email},
		})
	}
	return h.sendAuthResult(c, result)
}

func (h *UserHandler) HandleResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.auth.ResendOTP(c.UserContext(), req.Email, req.OTPPurpose)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    msg,
		"otpPurpose": req.OTPPurpose,
	})
}

func (h *UserHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return h.sendAuthResult(c, result)
}

func (h *UserHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.auth.ResetPassword(c.UserContext(), req.Email, req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password reset successful. You can now login with your new password.",
	})
}

func (h *UserHandler) HandleRefreshToken(c *fiber.Ctx) error {
	access, user, err := h.auth.RefreshAccessToken(c.UserContext(), c.Cookies(refreshCookie))
	if err != nil {
		return err
	}
	h.setAccessCookie(c, access)
	return c.JSON(fiber.Map{
		"success":     true,
		"accessToken": access,
		"data":        user,
	})
}

func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	for _, name := range []string{refreshCookie, middleware.AccessCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteNoneMode,
			Secure:   true,
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (h *UserHandler) HandleProfile(c *fiber.Ctx) error {
	user, err := h.users.Profile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile fetched successfully",
		"data":    user,
	})
}

func (h *UserHandler) HandleUpdateUserInfo(c *fiber.Ctx) error {
	var req services.UpdateUserInfoInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateUserInfo(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	err := h.users.ChangePassword(c.UserContext(), middleware.UserID(c), req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password changed successfully",
	})
}

func (h *UserHandler) HandleUpdateAvatar(c *fiber.Ctx) error {
	var req avatarRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateAvatar(c.UserContext(), middleware.UserID(c), req.UserAvatar)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User avatar updated successfully",
		"user":    fiber.Map{"avatar": user.Avatar},
	})
}

func (h *UserHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var req models.Address
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateAddress(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Address saved successfully!",
		"user":    user,
	})
}

func (h *UserHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	user, err := h.users.DeleteAddress(c.UserContext(), middleware.UserID(c), c.Params("type"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Address deleted successfully",
		"user":    user,
	})
}

func (h *UserHandler) HandleAdminListUsers(c *fiber.Ctx) error {
	users, err := h.users.AdminListUsers(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Users fetched successfully",
		"users":   users,
	})
}

func (h *UserHandler) HandleAdminDeleteUser(c *fiber.Ctx) error {
	msg, err := h.users.AdminDeleteUser(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": msg,
	})
}

// device fills the platform from the x-platform header when the body has none.
func (h *UserHandler) device(c *fiber.Ctx, d services.DeviceInfo) services.DeviceInfo {
	if d.Platform == "" {
		d.Platform = c.Get("x-platform")
	}
	return d
}

// sendAuthResult writes either a signed-in response with the refresh cookie
// or a pending-OTP response.
func (h *UserHandler) sendAuthResult(c *fiber.Ctx, result *services.AuthResult) error {
	if result.Tokens == nil {
		return c.JSON(fiber.Map{
			"success":    true,
			"message":    result.Message,
			"email":      result.User.Email,
			"otpPurpose": result.OTPPurpose,
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    result.Tokens.RefreshToken,
		Expires:  time.Now().Add(h.tokens.RefreshTTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Secure:   true,
	})
	h.setAccessCookie(c, result.Tokens.AccessToken)
	h.log.Debug("tokens issued", zap.String("user_id", result.User.ID))
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     result.Message,
		"data":        result.User,
		"accessToken": result.Tokens.AccessToken,
	})
}

func (h *UserHandler) setAccessCookie(c *fiber.Ctx, access string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessCookie,
		Value:    access,
		Expires:  time.Now().Add(h.tokens.AccessTTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Secure:   true,
	})
}
