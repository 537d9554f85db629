package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mente-aberta-api/internal/api/dto"
	"github.com/spec-kit/mente-aberta-api/internal/service"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// InvitesHandler exposes the invite gate.
type InvitesHandler struct {
	invites *service.InviteService
}

// NewInvitesHandler constructs handler.
func NewInvitesHandler(invites *service.InviteService) *InvitesHandler {
	return &InvitesHandler{invites: invites}
}

// Validate handles POST /invites/validate.
func (h *InvitesHandler) Validate(c *fiber.Ctx) error {
	var req dto.InviteCodeRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}

	code, err := h.invites.Validate(c.UserContext(), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.InviteValidationResponse{
		Valid:         true,
		Code:          code.Code,
		RemainingUses: h.invites.RemainingUses(code),
	}})
}

// Redeem handles POST /invites/redeem for the signed-in user.
func (h *InvitesHandler) Redeem(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.InviteCodeRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}

	result, err := h.invites.Redeem(c.UserContext(), principal.User, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.InviteRedeemResponse{
		Code:    result.Code.Code,
		User:    dto.NewUserResponse(result.Profile),
		Session: dto.NewSessionResponse(result.Session),
	}})
}
