package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/utils"
)

type CompanyHandler struct {
	companyService *services.CompanyService
}

func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// ListCompanies returns one page of companies ordered by the sort parameter
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	order := services.ParseCompanySort(c.Query("sort"))
	params := utils.GetPaginationParams(c)

	companies, total, err := h.companyService.ListCompanies(order, params)
	if err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyListResponse(companies, string(order), params.Response(total)))
}

// GetCompany returns a company with managers, phones, emails and projects
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(id)
	if err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyDetailDTO(*company))
}

// NewCompanyForm returns an empty company editor
func (h *CompanyHandler) NewCompanyForm(c *gin.Context) {
	form, err := h.companyService.EditForm(nil)
	if err != nil {
		respondCompanyError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// CreateCompany saves a company with its managers, phones and emails
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var form forms.CompanyForm
	if !bindJSON(c, &form) {
		return
	}

	company, err := h.companyService.CreateCompany(&form)
	if err != nil {
		respondCompanyError(c, err)
		return
	}

	detail, err := h.companyService.GetCompany(company.ID)
	if err != nil {
		respondCompanyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCompanyDetailDTO(*detail))
}

// EditCompanyForm returns the editor for an existing company
func (h *CompanyHandler) EditCompanyForm(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	form, err := h.companyService.EditForm(&id)
	if err != nil {
		respondCompanyError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// UpdateCompany saves changes to a company and its submitted collections
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var form forms.CompanyForm
	if !bindJSON(c, &form) {
		return
	}

	company, err := h.companyService.UpdateCompany(id, &form)
	if err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyDetailDTO(*company))
}

// ConfirmDeleteCompany shows what a delete would remove
func (h *CompanyHandler) ConfirmDeleteCompany(c *gin.Context) {
	h.GetCompany(c)
}

// DeleteCompany removes a company and everything attached to it
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.companyService.DeleteCompany(id); err != nil {
		respondCompanyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company deleted successfully"})
}

func respondCompanyError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrCompanyNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrSaveCompany):
		apierrors.InternalError(c, "Failed to save company")
	default:
		log.Error().Err(err).Msg("Company request failed")
		apierrors.InternalError(c, "Internal server error")
	}
}
