package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mente-aberta-api/internal/api/dto"
	"github.com/spec-kit/mente-aberta-api/internal/service"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// MeHandler serves onboarding and the dashboard for the signed-in user.
type MeHandler struct {
	profiles *service.ProfileService
	feedback *service.FeedbackService
}

// NewMeHandler constructs handler.
func NewMeHandler(profiles *service.ProfileService, feedback *service.FeedbackService) *MeHandler {
	return &MeHandler{profiles: profiles, feedback: feedback}
}

// Onboarding handles PUT /me/onboarding.
func (h *MeHandler) Onboarding(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.OnboardingRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.CompleteOnboarding(c.UserContext(), principal.User, service.OnboardingInput{
		Name:  req.Name,
		Age:   req.Age,
		Goals: req.Goals,
		Plan:  req.Plan,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(profile)})
}

// Dashboard handles GET /dashboard.
func (h *MeHandler) Dashboard(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(h.profiles.Dashboard(principal.User))})
}

// SubmitFeedback handles POST /feedback.
func (h *MeHandler) SubmitFeedback(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}

	fb, err := h.feedback.Submit(c.UserContext(), principal.User, service.SubmitFeedbackInput{
		Type:    domainFeedbackType(req.Type),
		Message: req.Message,
		Rating:  req.Rating,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewFeedbackResponse(fb)})
}
