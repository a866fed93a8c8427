package controllers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
	"github.com/vietscribe/vietscribe/internal/pkg/usercontext"
)

// HandleListTemplates returns all active templates. Browsing is free;
// instantiating one is metered.
func HandleListTemplates(c *fiber.Ctx) error {
	templates, err := repository.GetGlobalFactory().GetTemplateRepository().ListActive()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"templates": templates})
}

type useTemplateRequest struct {
	Title         string `json:"title"`
	AcademicLevel string `json:"academic_level"`
	Language      string `json:"language"`
}

// HandleUseTemplate creates a project prefilled with a template's outline,
// charged against the template quota. Free-tier users are not entitled.
func HandleUseTemplate(c *fiber.Ctx) error {
	templateID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid template id")
	}

	var req useTemplateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	factory := repository.GetGlobalFactory()
	tmpl, err := factory.GetTemplateRepository().GetByID(uint(templateID))
	if err != nil {
		return respondError(c, err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = tmpl.NameVi
	}
	if req.AcademicLevel == "" {
		req.AcademicLevel = models.AcademicLevelBachelor
	}
	if req.Language == "" {
		req.Language = "vi"
	}

	userID := usercontext.GetUserID(c)
	project := &models.Project{
		UUID:          uuid.New().String(),
		UserID:        userID,
		Title:         title,
		AcademicLevel: req.AcademicLevel,
		Language:      req.Language,
		OutlineJSON:   tmpl.OutlineJSON,
	}
	err = services.Meter.Invoker.Invoke(c.UserContext(), userID, plans.FeatureTemplate, func(context.Context) error {
		return factory.GetProjectRepository().Create(project)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}
