package repository

import (
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/utils"
)

// CompanyRepository defines the interface for company data access
type CompanyRepository interface {
	// List retrieves one page of companies in the given order
	List(order CompanyOrder, page utils.PaginationParams) ([]models.Company, int64, error)

	// FindByID finds a company by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Company, error)

	// Exists reports whether a company with the ID exists
	Exists(id uint64) (bool, error)

	// SaveWithDependents saves the company and every submitted dependent
	// collection in a single transaction. verify runs inside the transaction
	// once the company has an ID and before any dependent row is written;
	// a non-nil result rolls everything back.
	SaveWithDependents(company *models.Company, deps CompanyDependents, verify func(ExistingDependents) error) error

	// Delete deletes a company with its dependents, projects and interactions
	Delete(id uint64) error
}

// CompanyOrder is a whitelisted company list ordering.
type CompanyOrder string

const (
	OrderNameAsc        CompanyOrder = "name"
	OrderNameDesc       CompanyOrder = "-name"
	OrderDateCreateAsc  CompanyOrder = "date_create"
	OrderDateCreateDesc CompanyOrder = "-date_create"
)

// CompanyDependents carries the dependent collections of a company save.
// A nil slice leaves that collection untouched; a non-nil slice replaces it.
type CompanyDependents struct {
	Managers []models.CompanyManager
	Phones   []models.Phone
	Emails   []models.CompanyEmail
}

// ExistingDependents holds the IDs of rows already stored for a company.
type ExistingDependents struct {
	ManagerIDs map[uint64]struct{}
	PhoneIDs   map[uint64]struct{}
	EmailIDs   map[uint64]struct{}
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64, preload ...string) (*models.Project, error)
	Exists(id uint64) (bool, error)
	List(page utils.PaginationParams) ([]models.Project, int64, error)
	Update(project *models.Project) error

	// Delete deletes a project and its interactions
	Delete(id uint64) error
}

// InteractionFilter holds filtering options for listing interactions
type InteractionFilter struct {
	ManagerID *uint64
	// Terms match channel or description case-insensitively; any term suffices.
	Terms []string
	Page  utils.PaginationParams
}

// InteractionRepository defines the interface for interaction data access
type InteractionRepository interface {
	Create(interaction *models.Interaction) error
	FindByID(id uint64, preload ...string) (*models.Interaction, error)
	Update(interaction *models.Interaction) error
	Delete(id uint64) error

	// List retrieves interactions ordered by descending grade
	List(filter InteractionFilter) ([]models.Interaction, int64, error)

	// ListByCompany retrieves one page of a company's interactions
	ListByCompany(companyID uint64, page utils.PaginationParams) ([]models.Interaction, int64, error)

	// GradesByCompany returns the grade of every interaction of a company
	GradesByCompany(companyID uint64) ([]int, error)

	// ListByProject retrieves one page of a project's interactions
	ListByProject(projectID uint64, page utils.PaginationParams) ([]models.Interaction, int64, error)

	// DistinctChannels lists the channels present among stored interactions
	DistinctChannels() ([]models.Channel, error)

	// RecentDescriptions returns the newest interaction descriptions
	RecentDescriptions(limit int) ([]string, error)
}

// KeywordRepository defines the interface for keyword data access
type KeywordRepository interface {
	Create(keyword *models.Keyword) error
	FindByKeyword(keyword string) (*models.Keyword, error)

	// ListValues returns every keyword string in alphabetical order
	ListValues() ([]string, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Update saves profile fields of a user
	Update(user *models.User) error

	// ListCapabilities returns the capability strings granted to a user
	ListCapabilities(userID uint64) ([]string, error)

	// Grant adds capabilities to a user, ignoring ones already held
	Grant(userID uint64, capabilities []string) error

	// Revoke removes capabilities from a user
	Revoke(userID uint64, capabilities []string) error
}
