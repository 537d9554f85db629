package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mente-aberta-api/internal/api/dto"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	"github.com/spec-kit/mente-aberta-api/internal/service"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// AdminHandler backs the admin panel.
type AdminHandler struct {
	invites  *service.InviteService
	testers  *service.TesterService
	feedback *service.FeedbackService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(invites *service.InviteService, testers *service.TesterService, feedback *service.FeedbackService) *AdminHandler {
	return &AdminHandler{invites: invites, testers: testers, feedback: feedback}
}

// ListTesters handles GET /admin/testers.
func (h *AdminHandler) ListTesters(c *fiber.Ctx) error {
	var q dto.TesterListQuery
	if err := apperrors.ValidateQuery(c, &q); err != nil {
		return err
	}
	var status *domain.UserStatus
	if q.Status != "" {
		s := domain.UserStatus(q.Status)
		status = &s
	}

	testers, err := h.testers.List(c.UserContext(), status, q.Limit, q.Offset)
	if err != nil {
		return err
	}
	out := make([]dto.TesterResponse, 0, len(testers))
	for _, t := range testers {
		out = append(out, dto.NewTesterResponse(t))
	}
	return c.JSON(fiber.Map{"data": out})
}

// SetTesterStatus handles PUT /admin/testers/:id/status.
func (h *AdminHandler) SetTesterStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ActiveRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}

	user, err := h.testers.SetActive(c.UserContext(), principal.User, c.Params("id"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": user.ID, "status": user.Status}})
}

// ListInvites handles GET /admin/invites.
func (h *AdminHandler) ListInvites(c *fiber.Ctx) error {
	var q dto.InviteListQuery
	if err := apperrors.ValidateQuery(c, &q); err != nil {
		return err
	}

	codes, err := h.invites.ListCodes(c.UserContext(), repository.InviteCodeFilter{Active: q.Active, Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return err
	}
	out := make([]dto.InviteCodeResponse, 0, len(codes))
	for i := range codes {
		out = append(out, h.inviteResponse(&codes[i]))
	}
	return c.JSON(fiber.Map{"data": out, "usage_cap": h.invites.UsageCap()})
}

// CreateInvite handles POST /admin/invites.
func (h *AdminHandler) CreateInvite(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateInviteRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}

	code, err := h.invites.CreateCode(c.UserContext(), principal.User, service.CreateInviteInput{
		Code:          req.Code,
		MaxUses:       req.MaxUses,
		ExpiresInDays: req.ExpiresInDays,
		Description:   req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": h.inviteResponse(code)})
}

// SetInviteStatus handles PUT /admin/invites/:code/status.
func (h *AdminHandler) SetInviteStatus(c *fiber.Ctx) error {
	var req dto.ActiveRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}
	code, err := h.invites.SetActive(c.UserContext(), c.Params("code"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.inviteResponse(code)})
}

// ListFeedback handles GET /admin/feedback.
func (h *AdminHandler) ListFeedback(c *fiber.Ctx) error {
	var q dto.FeedbackListQuery
	if err := apperrors.ValidateQuery(c, &q); err != nil {
		return err
	}
	filter := repository.FeedbackFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		s := domain.FeedbackStatus(q.Status)
		filter.Status = &s
	}
	if q.Type != "" {
		t := domainFeedbackType(q.Type)
		filter.Type = &t
	}

	items, err := h.feedback.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	out := make([]dto.FeedbackResponse, 0, len(items))
	for i := range items {
		out = append(out, dto.NewFeedbackResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// SetFeedbackStatus handles PUT /admin/feedback/:id/status.
func (h *AdminHandler) SetFeedbackStatus(c *fiber.Ctx) error {
	var req dto.FeedbackStatusRequest
	if err := apperrors.ValidateBody(c, &req); err != nil {
		return err
	}
	fb, err := h.feedback.UpdateStatus(c.UserContext(), c.Params("id"), domain.FeedbackStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewFeedbackResponse(fb)})
}

func (h *AdminHandler) inviteResponse(code *domain.InviteCode) dto.InviteCodeResponse {
	return dto.NewInviteCodeResponse(code, h.invites.RemainingUses(code), h.invites.Usable(code))
}

func domainFeedbackType(t string) domain.FeedbackType {
	return domain.FeedbackType(t)
}
