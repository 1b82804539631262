package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ListProjects returns one page of projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.ListProjects(params)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, params.Response(total)))
}

// GetProject returns a project with its company
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// NewProjectForm returns an empty project editor
func (h *ProjectHandler) NewProjectForm(c *gin.Context) {
	c.JSON(http.StatusOK, services.ProjectInput{})
}

// CreateProject stores a new project
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.ProjectInput
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(req)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// EditProjectForm returns the editor for an existing project
func (h *ProjectHandler) EditProjectForm(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.ProjectForm(project))
}

// UpdateProject stores changes to a project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.ProjectInput
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(id, req)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// ConfirmDeleteProject shows the project a delete would remove
func (h *ProjectHandler) ConfirmDeleteProject(c *gin.Context) {
	h.GetProject(c)
}

// DeleteProject removes a project and points back to its company
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	companyID, err := h.projectService.DeleteProject(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectDeletedResponse{CompanyID: companyID})
}

func respondProjectError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		log.Error().Err(err).Msg("Project request failed")
		apierrors.InternalError(c, "Internal server error")
	}
}
