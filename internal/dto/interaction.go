package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/utils"
)

// InteractionDTO represents an interaction in API responses
type InteractionDTO struct {
	ID          uint64             `json:"id"`
	Channel     models.Channel     `json:"channel"`
	Description string             `json:"description"`
	Grade       int                `json:"grade"`
	ProjectID   uint64             `json:"project_id"`
	CompanyID   uint64             `json:"company_id"`
	ManagerID   *uint64            `json:"manager_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Project     *ProjectSummaryDTO `json:"project,omitempty"`
	Company     *CompanySummaryDTO `json:"company,omitempty"`
	Manager     *UserDTO           `json:"manager,omitempty"`
}

// InteractionListResponse is the global or per-manager listing with the
// filter choices next to it.
type InteractionListResponse struct {
	Interactions []InteractionDTO         `json:"interactions"`
	Query        []string                 `json:"q"`
	Keywords     []string                 `json:"keywords"`
	Channels     []models.Channel         `json:"channels"`
	Pagination   utils.PaginationResponse `json:"pagination"`
}

// CompanyInteractionRowDTO is one row of the per-company listing
type CompanyInteractionRowDTO struct {
	CompanyID     uint64            `json:"company_id"`
	CompanyName   string            `json:"company_name"`
	AverageGrade  float64           `json:"average_grade"`
	Project       ProjectSummaryDTO `json:"project"`
	Channel       models.Channel    `json:"channel"`
	InteractionID uint64            `json:"interaction_id"`
}

// CompanyInteractionsResponse is the per-company listing. AverageGrade is
// null and HasData false when the company has no interactions.
type CompanyInteractionsResponse struct {
	CompanyID    uint64                     `json:"company_id"`
	CompanyName  string                     `json:"company_name"`
	HasData      bool                       `json:"has_data"`
	AverageGrade *float64                   `json:"average_grade"`
	Rows         []CompanyInteractionRowDTO `json:"rows"`
	Pagination   utils.PaginationResponse   `json:"pagination"`
}

// ProjectInteractionRowDTO is one row of the per-project listing
type ProjectInteractionRowDTO struct {
	ProjectID     uint64         `json:"project_id"`
	ProjectTitle  string         `json:"project_title"`
	CompanyName   string         `json:"company_name"`
	Channel       models.Channel `json:"channel"`
	InteractionID uint64         `json:"interaction_id"`
}

// ProjectInteractionsResponse is the per-project listing
type ProjectInteractionsResponse struct {
	ProjectID    uint64                     `json:"project_id"`
	ProjectTitle string                     `json:"project_title"`
	Rows         []ProjectInteractionRowDTO `json:"rows"`
	Pagination   utils.PaginationResponse   `json:"pagination"`
}

// ToInteractionDTO converts an Interaction model to InteractionDTO
func ToInteractionDTO(interaction models.Interaction) InteractionDTO {
	out := InteractionDTO{
		ID:          interaction.ID,
		Channel:     interaction.Channel,
		Description: interaction.Description,
		Grade:       interaction.Grade,
		ProjectID:   interaction.ProjectID,
		CompanyID:   interaction.CompanyID,
		ManagerID:   interaction.ManagerID,
		CreatedAt:   interaction.CreatedAt,
		UpdatedAt:   interaction.UpdatedAt,
	}
	if interaction.Project != nil {
		project := ToProjectSummaryDTO(*interaction.Project)
		out.Project = &project
	}
	if interaction.Company != nil {
		company := ToCompanySummaryDTO(*interaction.Company)
		out.Company = &company
	}
	if interaction.Manager != nil {
		manager := ToUserDTO(*interaction.Manager)
		out.Manager = &manager
	}
	return out
}

// ToInteractionListResponse builds a listing response
func ToInteractionListResponse(interactions []models.Interaction, query []string, options services.FilterOptions, pagination utils.PaginationResponse) InteractionListResponse {
	items := make([]InteractionDTO, len(interactions))
	for i, interaction := range interactions {
		items[i] = ToInteractionDTO(interaction)
	}
	if query == nil {
		query = []string{}
	}
	keywords := options.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	channels := options.Channels
	if channels == nil {
		channels = []models.Channel{}
	}
	return InteractionListResponse{
		Interactions: items,
		Query:        query,
		Keywords:     keywords,
		Channels:     channels,
		Pagination:   pagination,
	}
}

// ToCompanyInteractionsResponse emits one row per interaction
func ToCompanyInteractionsResponse(result services.CompanyInteractions, pagination utils.PaginationResponse) CompanyInteractionsResponse {
	resp := CompanyInteractionsResponse{
		CompanyID:    result.Company.ID,
		CompanyName:  result.Company.Name,
		HasData:      result.HasData(),
		AverageGrade: result.AverageGrade,
		Rows:         make([]CompanyInteractionRowDTO, 0, len(result.Interactions)),
		Pagination:   pagination,
	}
	if !resp.HasData {
		return resp
	}

	for _, interaction := range result.Interactions {
		row := CompanyInteractionRowDTO{
			CompanyID:     result.Company.ID,
			CompanyName:   result.Company.Name,
			AverageGrade:  *result.AverageGrade,
			Project:       ProjectSummaryDTO{ID: interaction.ProjectID},
			Channel:       interaction.Channel,
			InteractionID: interaction.ID,
		}
		if interaction.Project != nil {
			row.Project = ToProjectSummaryDTO(*interaction.Project)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}

// ToProjectInteractionsResponse emits one row per interaction
func ToProjectInteractionsResponse(result services.ProjectInteractions, pagination utils.PaginationResponse) ProjectInteractionsResponse {
	companyName := ""
	if result.Project.Company != nil {
		companyName = result.Project.Company.Name
	}

	resp := ProjectInteractionsResponse{
		ProjectID:    result.Project.ID,
		ProjectTitle: result.Project.Title,
		Rows:         make([]ProjectInteractionRowDTO, 0, len(result.Interactions)),
		Pagination:   pagination,
	}
	for _, interaction := range result.Interactions {
		resp.Rows = append(resp.Rows, ProjectInteractionRowDTO{
			ProjectID:     result.Project.ID,
			ProjectTitle:  result.Project.Title,
			CompanyName:   companyName,
			Channel:       interaction.Channel,
			InteractionID: interaction.ID,
		})
	}
	return resp
}
