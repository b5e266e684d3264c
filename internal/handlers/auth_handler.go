package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/arhammunir1104/ecom-sub001/internal/middleware"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

// AuthHandler handles HTTP requests for authentication: registration, login
// with optional two-factor verification, 2FA lifecycle, and password reset.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/2fa/verify", h.HandleVerifyLogin)
	authRoutes.Post("/2fa/resend", h.HandleResendCode)
	authRoutes.Post("/2fa/setup", requireAuth, h.HandleTwoFactorSetup)
	authRoutes.Post("/2fa/disable", requireAuth, h.HandleTwoFactorDisable)
	authRoutes.Post("/password/forgot", h.HandleForgotPassword)
	authRoutes.Post("/password/verify", h.HandleVerifyReset)
	authRoutes.Post("/password/reset", h.HandleCompleteReset)
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}

	user := &models.User{Username: req.Username, Email: req.Email}
	if err := h.authService.Register(c.UserContext(), user, req.Password); err != nil {
		log.Printf("Error registering user: %v", err)
		return fail(c, err, "Registration failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles login. The response is either a final session payload
// or a two-factor-required partial payload.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err, "Authentication failed")
	}
	if result.TwoFactorRequired {
		return c.JSON(fiber.Map{
			"message":             "Verification code sent",
			"two_factor_required": true,
		})
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// CodeRequest carries an owner key (numeric id, auth UID, or email) and a
// code.
type CodeRequest struct {
	User string `json:"user" validate:"required"`
	Code string `json:"code"`
}

// HandleVerifyLogin completes a two-factor login.
func (h *AuthHandler) HandleVerifyLogin(c *fiber.Ctx) error {
	var req CodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}

	result, err := h.authService.VerifyLogin(c.UserContext(), req.User, req.Code)
	if err != nil {
		return fail(c, err, "Invalid or expired code")
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// HandleResendCode re-issues a pending login code. The response is the same
// whether or not the owner exists.
func (h *AuthHandler) HandleResendCode(c *fiber.Ctx) error {
	var req CodeRequest
	if err := c.BodyParser(&req); err != nil || req.User == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.authService.ResendLoginCode(c.UserContext(), req.User); err != nil {
		log.Printf("Error resending code: %v", err)
		return fail(c, err, "Could not send verification code")
	}
	return c.JSON(fiber.Map{"message": "If the account exists, a code was sent"})
}

// HandleTwoFactorSetup starts or confirms enabling 2FA for the logged-in
// user. Without a code it dispatches one; with a code it verifies and flips
// the flag in both stores.
func (h *AuthHandler) HandleTwoFactorSetup(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if req.Code == "" {
		if err := h.authService.BeginTwoFactorSetup(c.UserContext(), actor.User); err != nil {
			return fail(c, err, "Could not send verification code")
		}
		return c.JSON(fiber.Map{"message": "Verification code sent"})
	}

	result, err := h.authService.ConfirmTwoFactorSetup(c.UserContext(), actor.User, req.Code)
	if err != nil {
		return fail(c, err, "Invalid or expired code")
	}
	return c.JSON(fiber.Map{
		"message": "Two-factor authentication enabled",
		"sync":    result,
	})
}

// HandleTwoFactorDisable starts or confirms disabling 2FA.
func (h *AuthHandler) HandleTwoFactorDisable(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	result, err := h.authService.DisableTwoFactor(c.UserContext(), actor.User, req.Code)
	if err != nil {
		if req.Code == "" {
			return c.JSON(fiber.Map{"message": "Verification code sent"})
		}
		return fail(c, err, "Invalid or expired code")
	}
	return c.JSON(fiber.Map{
		"message": "Two-factor authentication disabled",
		"sync":    result,
	})
}

// HandleForgotPassword dispatches a reset code. Enumeration-safe.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}
	if err := h.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		log.Printf("Error requesting password reset: %v", err)
		return fail(c, err, "Could not send reset code")
	}
	return c.JSON(fiber.Map{"message": "If the account exists, a reset code was sent"})
}

// HandleVerifyReset exchanges a valid reset code for a one-shot reset token.
func (h *AuthHandler) HandleVerifyReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}

	token, err := h.authService.VerifyPasswordReset(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return fail(c, err, "Invalid or expired code")
	}
	return c.JSON(fiber.Map{"reset_token": token})
}

// HandleCompleteReset consumes a reset token and sets the new password,
// reporting the per-store propagation outcome.
func (h *AuthHandler) HandleCompleteReset(c *fiber.Ctx) error {
	var req struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=6"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}

	result, err := h.authService.CompletePasswordReset(c.UserContext(), req.Token, req.NewPassword)
	if err != nil {
		return fail(c, err, "Invalid or expired token")
	}
	if !result.Overall {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Password reset could not be saved",
			"sync":    result,
		})
	}
	return c.JSON(fiber.Map{
		"message": "Password updated",
		"sync":    result,
	})
}
