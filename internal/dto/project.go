package dto

import (
	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/utils"
)

// ProjectSummaryDTO is the short form of a project embedded in other responses
type ProjectSummaryDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// ProjectListItemDTO represents a project in list responses
type ProjectListItemDTO struct {
	ID        uint64             `json:"id"`
	Title     string             `json:"title"`
	StartDate forms.Date         `json:"start_date"`
	FinalDate forms.Date         `json:"final_date"`
	Price     uint64             `json:"price"`
	CompanyID *uint64            `json:"company_id"`
	Company   *CompanySummaryDTO `json:"company,omitempty"`
}

// ProjectDTO represents a project in detail responses
type ProjectDTO struct {
	ProjectListItemDTO
	Description string `json:"description"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectListItemDTO     `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ProjectDeletedResponse points back to the company the project belonged to
type ProjectDeletedResponse struct {
	CompanyID *uint64 `json:"company_id"`
}

// ToProjectSummaryDTO converts a Project model to ProjectSummaryDTO
func ToProjectSummaryDTO(project models.Project) ProjectSummaryDTO {
	return ProjectSummaryDTO{ID: project.ID, Title: project.Title}
}

// ToProjectListItemDTO converts a Project model to ProjectListItemDTO
func ToProjectListItemDTO(project models.Project) ProjectListItemDTO {
	item := ProjectListItemDTO{
		ID:        project.ID,
		Title:     project.Title,
		StartDate: forms.NewDate(project.StartDate),
		FinalDate: forms.NewDate(project.FinalDate),
		Price:     project.Price,
		CompanyID: project.CompanyID,
	}
	if project.Company != nil {
		summary := ToCompanySummaryDTO(*project.Company)
		item.Company = &summary
	}
	return item
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ProjectListItemDTO: ToProjectListItemDTO(project),
		Description:        project.Description,
	}
}

// ToProjectListResponse builds the project list response
func ToProjectListResponse(projects []models.Project, pagination utils.PaginationResponse) ProjectListResponse {
	items := make([]ProjectListItemDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectListItemDTO(project)
	}
	return ProjectListResponse{Projects: items, Pagination: pagination}
}
