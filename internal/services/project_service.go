package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	companyRepo repository.CompanyRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, companyRepo repository.CompanyRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		companyRepo: companyRepo,
	}
}

// ProjectInput is the editable part of a project.
type ProjectInput struct {
	Title       string      `json:"title" validate:"required,max=250"`
	CompanyID   *uint64     `json:"company_id" validate:"required"`
	Description string      `json:"description" validate:"required"`
	StartDate   *forms.Date `json:"start_date" validate:"required"`
	FinalDate   *forms.Date `json:"final_date" validate:"required"`
	Price       *int64      `json:"price" validate:"required,gte=0"`
}

// ProjectForm returns the editor state of an existing project.
func ProjectForm(project *models.Project) ProjectInput {
	start := forms.NewDate(project.StartDate)
	final := forms.NewDate(project.FinalDate)
	price := int64(project.Price)
	return ProjectInput{
		Title:       project.Title,
		CompanyID:   project.CompanyID,
		Description: project.Description,
		StartDate:   &start,
		FinalDate:   &final,
		Price:       &price,
	}
}

func (s *ProjectService) clean(input *ProjectInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	errs := forms.Struct(input)
	if input.StartDate != nil && input.StartDate.IsZero() {
		errs.Add("start_date", "This field is required.")
	}
	if input.FinalDate != nil && input.FinalDate.IsZero() {
		errs.Add("final_date", "This field is required.")
	}
	if input.CompanyID != nil {
		exists, err := s.companyRepo.Exists(*input.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to find company: %w", err)
		}
		if !exists {
			errs.Add("company_id", invalidChoice)
		}
	}
	return errs.Err()
}

func (input ProjectInput) apply(project *models.Project) {
	project.Title = input.Title
	project.CompanyID = input.CompanyID
	project.Description = input.Description
	project.StartDate = input.StartDate.Time
	project.FinalDate = input.FinalDate.Time
	project.Price = uint64(*input.Price)
}

// ListProjects returns one page of projects
func (s *ProjectService) ListProjects(page utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project with its company
func (s *ProjectService) GetProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, "Company")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// CreateProject validates and stores a new project
func (s *ProjectService) CreateProject(input ProjectInput) (*models.Project, error) {
	if err := s.clean(&input); err != nil {
		return nil, err
	}

	project := &models.Project{}
	input.apply(project)
	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetProject(project.ID)
}

// UpdateProject validates and stores changes to a project
func (s *ProjectService) UpdateProject(id uint64, input ProjectInput) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if err := s.clean(&input); err != nil {
		return nil, err
	}

	input.apply(project)
	project.Company = nil
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.GetProject(id)
}

// DeleteProject removes a project with its interactions and returns the
// owning company id, if any.
func (s *ProjectService) DeleteProject(id uint64) (*uint64, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Delete(id); err != nil {
		return nil, fmt.Errorf("failed to delete project: %w", err)
	}
	return project.CompanyID, nil
}
