package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInteractionNotFound = errors.New("interaction not found")
	ErrNotInteractionOwner = errors.New("only the manager who logged the interaction can modify it")
)

// InteractionService handles interaction listings and edits
type InteractionService struct {
	interactionRepo repository.InteractionRepository
	projectRepo     repository.ProjectRepository
	companyRepo     repository.CompanyRepository
}

// NewInteractionService creates a new InteractionService
func NewInteractionService(interactionRepo repository.InteractionRepository, projectRepo repository.ProjectRepository, companyRepo repository.CompanyRepository) *InteractionService {
	return &InteractionService{
		interactionRepo: interactionRepo,
		projectRepo:     projectRepo,
		companyRepo:     companyRepo,
	}
}

// InteractionInput is the editable part of an interaction. The manager is
// never part of it.
type InteractionInput struct {
	ProjectID   uint64         `json:"project_id" validate:"required"`
	CompanyID   uint64         `json:"company_id" validate:"required"`
	Channel     models.Channel `json:"channel" validate:"required,channel"`
	Description string         `json:"description" validate:"required"`
	Grade       int            `json:"grade" validate:"required,grade"`
}

// InteractionForm returns the editor state of an existing interaction.
func InteractionForm(interaction *models.Interaction) InteractionInput {
	return InteractionInput{
		ProjectID:   interaction.ProjectID,
		CompanyID:   interaction.CompanyID,
		Channel:     interaction.Channel,
		Description: interaction.Description,
		Grade:       interaction.Grade,
	}
}

// ListInteractionsInput represents filters for the interaction listings
type ListInteractionsInput struct {
	// ManagerID restricts the listing to one manager when set.
	ManagerID *uint64
	Terms     []string
	Page      utils.PaginationParams
}

// CompanyInteractions is the per-company listing with its average grade.
type CompanyInteractions struct {
	Company *models.Company
	// AverageGrade is nil when the company has no interactions.
	AverageGrade *float64
	Interactions []models.Interaction
	Total        int64
}

// HasData reports whether an average could be computed.
func (c CompanyInteractions) HasData() bool {
	return c.AverageGrade != nil
}

// ProjectInteractions is the per-project listing.
type ProjectInteractions struct {
	Project      *models.Project
	Interactions []models.Interaction
	Total        int64
}

// AverageGrade returns the mean of grades rounded to two decimals. ok is
// false for an empty slice.
func AverageGrade(grades []int) (avg float64, ok bool) {
	if len(grades) == 0 {
		return 0, false
	}
	sum := 0
	for _, g := range grades {
		sum += g
	}
	mean := float64(sum) / float64(len(grades))
	return math.Round(mean*100) / 100, true
}

// ListInteractions returns interactions ordered by descending grade
func (s *InteractionService) ListInteractions(input ListInteractionsInput) ([]models.Interaction, int64, error) {
	items, total, err := s.interactionRepo.List(repository.InteractionFilter{
		ManagerID: input.ManagerID,
		Terms:     input.Terms,
		Page:      input.Page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list interactions: %w", err)
	}
	return items, total, nil
}

// ListCompanyInteractions returns one page of a company's interactions
// together with the average grade over all of them.
func (s *InteractionService) ListCompanyInteractions(companyID uint64, page utils.PaginationParams) (*CompanyInteractions, error) {
	company, err := s.companyRepo.FindByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}

	grades, err := s.interactionRepo.GradesByCompany(companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grades: %w", err)
	}

	result := &CompanyInteractions{Company: company, Interactions: []models.Interaction{}}
	avg, ok := AverageGrade(grades)
	if !ok {
		return result, nil
	}
	result.AverageGrade = &avg

	items, total, err := s.interactionRepo.ListByCompany(companyID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	result.Interactions = items
	result.Total = total

	return result, nil
}

// ListProjectInteractions returns one page of a project's interactions
func (s *InteractionService) ListProjectInteractions(projectID uint64, page utils.PaginationParams) (*ProjectInteractions, error) {
	project, err := s.projectRepo.FindByID(projectID, "Company")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	items, total, err := s.interactionRepo.ListByProject(projectID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	return &ProjectInteractions{Project: project, Interactions: items, Total: total}, nil
}

// GetInteraction returns an interaction with its project, company and manager
func (s *InteractionService) GetInteraction(id uint64) (*models.Interaction, error) {
	interaction, err := s.interactionRepo.FindByID(id, "Project", "Company", "Manager")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInteractionNotFound
		}
		return nil, fmt.Errorf("failed to find interaction: %w", err)
	}
	return interaction, nil
}

// GetOwnedInteraction returns the interaction only if userID logged it.
func (s *InteractionService) GetOwnedInteraction(id, userID uint64) (*models.Interaction, error) {
	interaction, err := s.GetInteraction(id)
	if err != nil {
		return nil, err
	}
	if !interaction.OwnedBy(userID) {
		return nil, ErrNotInteractionOwner
	}
	return interaction, nil
}

func (s *InteractionService) clean(input *InteractionInput) error {
	input.Description = strings.TrimSpace(input.Description)
	input.Channel = models.Channel(strings.ToLower(strings.TrimSpace(string(input.Channel))))

	errs := forms.Struct(input)

	if input.ProjectID != 0 {
		exists, err := s.projectRepo.Exists(input.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to find project: %w", err)
		}
		if !exists {
			errs.Add("project_id", invalidChoice)
		}
	}
	if input.CompanyID != 0 {
		exists, err := s.companyRepo.Exists(input.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to find company: %w", err)
		}
		if !exists {
			errs.Add("company_id", invalidChoice)
		}
	}

	return errs.Err()
}

func (input InteractionInput) apply(interaction *models.Interaction) {
	interaction.ProjectID = input.ProjectID
	interaction.CompanyID = input.CompanyID
	interaction.Channel = input.Channel
	interaction.Description = input.Description
	interaction.Grade = input.Grade
}

// CreateInteraction stores a new interaction logged by managerID
func (s *InteractionService) CreateInteraction(managerID uint64, input InteractionInput) (*models.Interaction, error) {
	if err := s.clean(&input); err != nil {
		return nil, err
	}

	interaction := &models.Interaction{ManagerID: &managerID}
	input.apply(interaction)
	if err := s.interactionRepo.Create(interaction); err != nil {
		return nil, fmt.Errorf("failed to create interaction: %w", err)
	}

	return s.GetInteraction(interaction.ID)
}

// UpdateInteraction stores changes to an interaction. The recorded manager
// is kept as is.
func (s *InteractionService) UpdateInteraction(interaction *models.Interaction, input InteractionInput) (*models.Interaction, error) {
	if err := s.clean(&input); err != nil {
		return nil, err
	}

	input.apply(interaction)
	interaction.Project = nil
	interaction.Company = nil
	interaction.Manager = nil
	if err := s.interactionRepo.Update(interaction); err != nil {
		return nil, fmt.Errorf("failed to update interaction: %w", err)
	}

	return s.GetInteraction(interaction.ID)
}

// DeleteInteraction removes an interaction
func (s *InteractionService) DeleteInteraction(id uint64) error {
	if err := s.interactionRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	return nil
}
