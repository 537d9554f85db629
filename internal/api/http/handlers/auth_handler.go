package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mente-aberta-api/internal/api/dto"
	"github.com/spec-kit/mente-aberta-api/internal/auth"
	"github.com/spec-kit/mente-aberta-api/internal/service"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// PasswordManager covers password flows beyond the core authenticator.
type PasswordManager interface {
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// AuthHandler exposes account endpoints.
type AuthHandler struct {
	auth      service.Authenticator
	passwords PasswordManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authenticator service.Authenticator, passwords PasswordManager) *AuthHandler {
	return &AuthHandler{auth: authenticator, passwords: passwords}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.SignUp(c.UserContext(), service.SignUpInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAuthResponse(result)})
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuthResponse(result)})
}

// SignOut handles POST /auth/signout.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.auth.SignOut(c.UserContext(), principal.Claims); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RequestPasswordReset handles POST /auth/password/reset/request. It always answers 202.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ResetPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"message": "if the account exists, a reset link has been sent"},
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}
	if err := h.passwords.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}
	if err := h.passwords.ChangePassword(c.UserContext(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	profile, err := h.auth.CurrentUser(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(profile)})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}
