package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/utils"
)

// CompanySummaryDTO is the short form of a company embedded in other responses
type CompanySummaryDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// CompanyListItemDTO represents a company in list responses
type CompanyListItemDTO struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	DateCreate time.Time `json:"date_create"`
	DateEdit   time.Time `json:"date_edit"`
}

// CompanyListResponse represents a paginated, ordered list of companies
type CompanyListResponse struct {
	Companies    []CompanyListItemDTO     `json:"companies"`
	CurrentOrder string                   `json:"current_order"`
	Pagination   utils.PaginationResponse `json:"pagination"`
}

type ManagerDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Position string `json:"position"`
	FullName string `json:"full_name"`
}

type PhoneDTO struct {
	ID      uint64 `json:"id"`
	Phone   string `json:"phone"`
	Display string `json:"display"`
}

type EmailDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// CompanyDetailDTO represents a company with everything shown on its page
type CompanyDetailDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Address     string               `json:"address"`
	DateCreate  time.Time            `json:"date_create"`
	DateEdit    time.Time            `json:"date_edit"`
	Managers    []ManagerDTO         `json:"managers"`
	Phones      []PhoneDTO           `json:"phones"`
	Emails      []EmailDTO           `json:"emails"`
	Projects    []ProjectListItemDTO `json:"projects"`
}

// ToCompanySummaryDTO converts a Company model to CompanySummaryDTO
func ToCompanySummaryDTO(company models.Company) CompanySummaryDTO {
	return CompanySummaryDTO{ID: company.ID, Name: company.Name}
}

// ToCompanyListItemDTO converts a Company model to CompanyListItemDTO
func ToCompanyListItemDTO(company models.Company) CompanyListItemDTO {
	return CompanyListItemDTO{
		ID:         company.ID,
		Name:       company.Name,
		Address:    company.Address,
		DateCreate: company.CreatedAt,
		DateEdit:   company.UpdatedAt,
	}
}

// ToCompanyListResponse builds the company list response
func ToCompanyListResponse(companies []models.Company, order string, pagination utils.PaginationResponse) CompanyListResponse {
	items := make([]CompanyListItemDTO, len(companies))
	for i, company := range companies {
		items[i] = ToCompanyListItemDTO(company)
	}
	return CompanyListResponse{
		Companies:    items,
		CurrentOrder: order,
		Pagination:   pagination,
	}
}

// ToCompanyDetailDTO converts a Company model with preloaded relations
func ToCompanyDetailDTO(company models.Company) CompanyDetailDTO {
	detail := CompanyDetailDTO{
		ID:          company.ID,
		Name:        company.Name,
		Description: company.Description,
		Address:     company.Address,
		DateCreate:  company.CreatedAt,
		DateEdit:    company.UpdatedAt,
		Managers:    make([]ManagerDTO, len(company.Managers)),
		Phones:      make([]PhoneDTO, len(company.Phones)),
		Emails:      make([]EmailDTO, len(company.Emails)),
		Projects:    make([]ProjectListItemDTO, len(company.Projects)),
	}

	for i, m := range company.Managers {
		detail.Managers[i] = ManagerDTO{ID: m.ID, Name: m.Name, Surname: m.Surname, Position: m.Position, FullName: m.FullName()}
	}
	for i, p := range company.Phones {
		detail.Phones[i] = PhoneDTO{ID: p.ID, Phone: p.Phone, Display: p.Display()}
	}
	for i, e := range company.Emails {
		detail.Emails[i] = EmailDTO{ID: e.ID, Email: e.Email}
	}
	for i, p := range company.Projects {
		detail.Projects[i] = ToProjectListItemDTO(p)
	}

	return detail
}
