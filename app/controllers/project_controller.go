package controllers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/export"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
	"github.com/vietscribe/vietscribe/internal/pkg/usercontext"
)

type createProjectRequest struct {
	Title           string `json:"title"`
	Topic           string `json:"topic"`
	AcademicLevel   string `json:"academic_level"`
	TargetWordCount int    `json:"target_word_count"`
	Language        string `json:"language"`
	OutlineJSON     string `json:"outline_json"`
}

// HandleCreateProject opens a new writing project, charged against the
// writing project quota.
func HandleCreateProject(c *fiber.Ctx) error {
	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return badRequest(c, "title is required")
	}
	if req.AcademicLevel == "" {
		req.AcademicLevel = models.AcademicLevelBachelor
	}
	if req.Language == "" {
		req.Language = "vi"
	}

	userID := usercontext.GetUserID(c)
	project := &models.Project{
		UUID:            uuid.New().String(),
		UserID:          userID,
		Title:           req.Title,
		Topic:           req.Topic,
		AcademicLevel:   req.AcademicLevel,
		TargetWordCount: req.TargetWordCount,
		Language:        req.Language,
		OutlineJSON:     req.OutlineJSON,
	}
	if err := project.Validate(); err != nil {
		return respondError(c, err)
	}

	repo := repository.GetGlobalFactory().GetProjectRepository()
	err := services.Meter.Invoker.Invoke(c.UserContext(), userID, plans.FeatureWritingProject, func(context.Context) error {
		return repo.Create(project)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// HandleListProjects returns the user's projects.
func HandleListProjects(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetProjectRepository()

	projects, err := repo.GetByUserID(usercontext.GetUserID(c), offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	total, err := repo.CountByUserID(usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects, "total": total})
}

// loadProjectForRead returns the project if the user owns it or collaborates
// on it.
func loadProjectForRead(c *fiber.Ctx) (*models.Project, error) {
	repo := repository.GetGlobalFactory().GetProjectRepository()
	project, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		return nil, err
	}
	userID := usercontext.GetUserID(c)
	if project.UserID == userID {
		return project, nil
	}
	ok, err := repo.IsCollaborator(project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return project, nil
}

// HandleGetProject returns one project with its sections.
func HandleGetProject(c *fiber.Ctx) error {
	project, err := loadProjectForRead(c)
	if err != nil {
		return respondError(c, err)
	}
	sections, err := repository.GetGlobalFactory().GetProjectRepository().GetSections(project.ID)
	if err != nil {
		return respondError(c, err)
	}
	project.Sections = sections
	return c.JSON(project)
}

type updateProjectRequest struct {
	Title           *string `json:"title"`
	Topic           *string `json:"topic"`
	TargetWordCount *int    `json:"target_word_count"`
	OutlineJSON     *string `json:"outline_json"`
}

// HandleUpdateProject patches project fields. Only the owner may update.
func HandleUpdateProject(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetProjectRepository()
	project, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		return respondError(c, err)
	}
	if project.UserID != usercontext.GetUserID(c) {
		return respondError(c, gorm.ErrRecordNotFound)
	}

	var req updateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Topic != nil {
		project.Topic = *req.Topic
	}
	if req.TargetWordCount != nil {
		project.TargetWordCount = *req.TargetWordCount
	}
	if req.OutlineJSON != nil {
		project.OutlineJSON = *req.OutlineJSON
	}
	if err := project.Validate(); err != nil {
		return respondError(c, err)
	}
	if err := repo.Update(project); err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// HandleDeleteProject soft-deletes a project. Only the owner may delete.
func HandleDeleteProject(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetProjectRepository()
	project, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		return respondError(c, err)
	}
	if project.UserID != usercontext.GetUserID(c) {
		return respondError(c, gorm.ErrRecordNotFound)
	}
	if err := repo.Delete(project.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type addSectionRequest struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// HandleAddSection appends a drafted section to a project.
func HandleAddSection(c *fiber.Ctx) error {
	project, err := loadProjectForRead(c)
	if err != nil {
		return respondError(c, err)
	}
	var req addSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	section := &models.ProjectSection{
		ProjectID: project.ID,
		Position:  req.Position,
		Title:     req.Title,
		Content:   req.Content,
	}
	if err := repository.GetGlobalFactory().GetProjectRepository().AddSection(section); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(section)
}

type exportRequest struct {
	Format string `json:"format"`
}

// HandleExportProject renders and uploads the project, charged against the
// export quota.
func HandleExportProject(c *fiber.Ctx) error {
	if services.Export == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "service_unavailable",
			"message": "Exports are not configured",
		})
	}
	project, err := loadProjectForRead(c)
	if err != nil {
		return respondError(c, err)
	}
	req := exportRequest{Format: export.FormatMarkdown}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	factory := repository.GetGlobalFactory()
	sections, err := factory.GetProjectRepository().GetSections(project.ID)
	if err != nil {
		return respondError(c, err)
	}
	citations, err := factory.GetCitationRepository().GetByProjectID(project.ID)
	if err != nil {
		return respondError(c, err)
	}

	result, err := services.Export.Export(c.UserContext(), usercontext.GetUserID(c), project, sections, citations, req.Format)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

type addCollaboratorRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleAddCollaborator invites another user to a project. Gated by the
// collaboration capability of the owner's tier.
func HandleAddCollaborator(c *fiber.Ctx) error {
	factory := repository.GetGlobalFactory()
	project, err := factory.GetProjectRepository().GetByUUID(c.Params("uuid"))
	if err != nil {
		return respondError(c, err)
	}
	userID := usercontext.GetUserID(c)
	if project.UserID != userID {
		return respondError(c, gorm.ErrRecordNotFound)
	}

	allowed, err := services.Meter.Evaluator.AllowsCapability(c.UserContext(), userID, plans.CapabilityCollaboration)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		return forbidden(c, "collaboration requires a premium plan")
	}

	var req addCollaboratorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Role != models.CollaboratorRoleEditor {
		req.Role = models.CollaboratorRoleViewer
	}

	invitee, err := factory.GetUserRepository().GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return respondError(c, err)
	}
	if invitee.ID == userID {
		return badRequest(c, "cannot invite yourself")
	}

	collab := &models.ProjectCollaborator{
		ProjectID: project.ID,
		UserID:    invitee.ID,
		Role:      req.Role,
		InvitedBy: userID,
	}
	if err := factory.GetProjectRepository().AddCollaborator(collab); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(collab)
}

// HandleListCollaborators returns a project's collaborators.
func HandleListCollaborators(c *fiber.Ctx) error {
	project, err := loadProjectForRead(c)
	if err != nil {
		return respondError(c, err)
	}
	collabs, err := repository.GetGlobalFactory().GetProjectRepository().GetCollaborators(project.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"collaborators": collabs})
}
