package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/citeformat"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
	"github.com/vietscribe/vietscribe/internal/pkg/usercontext"
)

type formatCitationRequest struct {
	ProjectUUID string `json:"project_uuid"`
	SourceType  string `json:"source_type"`
	Title       string `json:"title"`
	Authors     string `json:"authors"`
	Year        int    `json:"year"`
	Publisher   string `json:"publisher"`
	URL         string `json:"url"`
	Style       string `json:"style"`
}

// HandleFormatCitation formats and stores a bibliography entry, charged
// against the citation quota.
func HandleFormatCitation(c *fiber.Ctx) error {
	var req formatCitationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return badRequest(c, "title is required")
	}
	if req.Style == "" {
		req.Style = models.CitationStyleAPA
	}
	if req.SourceType == "" {
		req.SourceType = models.SourceTypeArticle
	}

	userID := usercontext.GetUserID(c)
	factory := repository.GetGlobalFactory()

	citation := &models.Citation{
		UserID:     userID,
		SourceType: req.SourceType,
		Title:      req.Title,
		Authors:    req.Authors,
		Year:       req.Year,
		Publisher:  req.Publisher,
		URL:        req.URL,
		Style:      req.Style,
	}
	if req.ProjectUUID != "" {
		project, err := factory.GetProjectRepository().GetByUUID(req.ProjectUUID)
		if err != nil {
			return respondError(c, err)
		}
		if project.UserID != userID {
			return badRequest(c, "project does not belong to you")
		}
		citation.ProjectID = project.ID
	}

	err := services.Meter.Invoker.Invoke(c.UserContext(), userID, plans.FeatureCitation, func(context.Context) error {
		formatted, err := citeformat.Format(citation, req.Style)
		if err != nil {
			return err
		}
		citation.Formatted = formatted
		return factory.GetCitationRepository().Create(citation)
	})
	if err != nil {
		if errors.Is(err, citeformat.ErrUnknownStyle) {
			return badRequest(c, err.Error())
		}
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(citation)
}

// HandleListCitations returns the user's citations, optionally filtered by
// project.
func HandleListCitations(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	factory := repository.GetGlobalFactory()

	if projectUUID := c.Query("project_uuid"); projectUUID != "" {
		project, err := factory.GetProjectRepository().GetByUUID(projectUUID)
		if err != nil {
			return respondError(c, err)
		}
		if project.UserID != userID {
			return badRequest(c, "project does not belong to you")
		}
		citations, err := factory.GetCitationRepository().GetByProjectID(project.ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"citations": citations})
	}

	offset, limit := parsePagination(c)
	citations, err := factory.GetCitationRepository().GetByUserID(userID, offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"citations": citations})
}
