package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/metrics"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrSaveCompany     = errors.New("failed to save company")
)

// companyDetailPreloads are the relations shown on the company page.
var companyDetailPreloads = []string{"Managers", "Phones", "Emails", "Projects"}

// CompanyService handles companies and their dependent collections.
type CompanyService struct {
	companyRepo repository.CompanyRepository
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo repository.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// ParseCompanySort maps the sort query value onto an ordering, falling back
// to name ascending for anything unknown.
func ParseCompanySort(value string) repository.CompanyOrder {
	switch order := repository.CompanyOrder(value); order {
	case repository.OrderNameAsc, repository.OrderNameDesc,
		repository.OrderDateCreateAsc, repository.OrderDateCreateDesc:
		return order
	default:
		return repository.OrderNameAsc
	}
}

// ListCompanies returns one page of companies
func (s *CompanyService) ListCompanies(order repository.CompanyOrder, page utils.PaginationParams) ([]models.Company, int64, error) {
	companies, total, err := s.companyRepo.List(order, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, total, nil
}

// GetCompany returns a company with its managers, phones, emails and projects
func (s *CompanyService) GetCompany(id uint64) (*models.Company, error) {
	company, err := s.companyRepo.FindByID(id, companyDetailPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return company, nil
}

// EditForm returns the editor state for a new company (id nil) or an existing one.
func (s *CompanyService) EditForm(id *uint64) (forms.CompanyForm, error) {
	if id == nil {
		return forms.NewCompanyForm(nil), nil
	}

	company, err := s.GetCompany(*id)
	if err != nil {
		return forms.CompanyForm{}, err
	}
	return forms.NewCompanyForm(company), nil
}

// CreateCompany validates the form and saves the company with its collections.
func (s *CompanyService) CreateCompany(form *forms.CompanyForm) (*models.Company, error) {
	company := &models.Company{}
	if err := s.save("create", company, form); err != nil {
		return nil, err
	}
	return company, nil
}

// UpdateCompany validates the form and saves it over an existing company.
func (s *CompanyService) UpdateCompany(id uint64, form *forms.CompanyForm) (*models.Company, error) {
	company, err := s.companyRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}

	if err := s.save("update", company, form); err != nil {
		return nil, err
	}
	return s.GetCompany(id)
}

// save runs the schema pass, then hands the referential pass to the
// repository so it runs inside the same transaction as the writes.
func (s *CompanyService) save(operation string, company *models.Company, form *forms.CompanyForm) error {
	if err := form.Clean(); err != nil {
		metrics.CompanySaves.WithLabelValues(operation, metrics.OutcomeInvalid).Inc()
		return err
	}

	form.CompanyModel(company)
	deps := repository.CompanyDependents{
		Managers: form.ManagerModels(),
		Phones:   form.PhoneModels(),
		Emails:   form.EmailModels(),
	}

	verify := func(existing repository.ExistingDependents) error {
		errs := forms.Errors{}
		errs.Merge("", forms.CheckOwnership(forms.PrefixManagers, form.Managers, existing.ManagerIDs))
		errs.Merge("", forms.CheckOwnership(forms.PrefixPhones, form.Phones, existing.PhoneIDs))
		errs.Merge("", forms.CheckOwnership(forms.PrefixEmails, form.Emails, existing.EmailIDs))
		return errs.Err()
	}

	if err := s.companyRepo.SaveWithDependents(company, deps, verify); err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			metrics.CompanySaves.WithLabelValues(operation, metrics.OutcomeInvalid).Inc()
			return err
		}
		metrics.CompanySaves.WithLabelValues(operation, metrics.OutcomeError).Inc()
		log.Error().Err(err).Str("operation", operation).Uint64("company_id", company.ID).Msg("Company save rolled back")
		return fmt.Errorf("%w: %v", ErrSaveCompany, err)
	}

	metrics.CompanySaves.WithLabelValues(operation, metrics.OutcomeOK).Inc()
	return nil
}

// DeleteCompany removes a company with everything that belongs to it
func (s *CompanyService) DeleteCompany(id uint64) error {
	exists, err := s.companyRepo.Exists(id)
	if err != nil {
		return fmt.Errorf("failed to find company: %w", err)
	}
	if !exists {
		return ErrCompanyNotFound
	}

	if err := s.companyRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return nil
}
