package repository

import (
	"strings"

	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInteractionRepository is a GORM implementation of InteractionRepository
type GormInteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new InteractionRepository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &GormInteractionRepository{db: db}
}

const interactionOrder = "interactions.grade DESC, interactions.id ASC"

// likeEscaper escapes LIKE wildcards with '!', which every supported dialect
// accepts as an ESCAPE character.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Create creates a new interaction
func (r *GormInteractionRepository) Create(interaction *models.Interaction) error {
	return r.db.Omit(clause.Associations).Create(interaction).Error
}

// FindByID finds an interaction by ID with optional preloading
func (r *GormInteractionRepository) FindByID(id uint64, preload ...string) (*models.Interaction, error) {
	var interaction models.Interaction
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&interaction, id).Error; err != nil {
		return nil, err
	}

	return &interaction, nil
}

// Update updates an interaction
func (r *GormInteractionRepository) Update(interaction *models.Interaction) error {
	return r.db.Omit(clause.Associations).Save(interaction).Error
}

// Delete deletes an interaction
func (r *GormInteractionRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Interaction{}, id).Error
}

// List retrieves interactions with filtering and pagination
func (r *GormInteractionRepository) List(filter InteractionFilter) ([]models.Interaction, int64, error) {
	query := r.db.Model(&models.Interaction{})

	if filter.ManagerID != nil {
		query = query.Where("interactions.manager_id = ?", *filter.ManagerID)
	}

	if cond, args := termCondition(filter.Terms); cond != "" {
		query = query.Where(cond, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var interactions []models.Interaction
	if err := query.Preload("Project").
		Preload("Company").
		Preload("Manager").
		Order(interactionOrder).
		Scopes(database.Paginate(filter.Page)).
		Find(&interactions).Error; err != nil {
		return nil, 0, err
	}

	return interactions, total, nil
}

// termCondition builds "channel or description contains any term" with
// case-insensitive substring matching. Blank terms are ignored.
func termCondition(terms []string) (string, []interface{}) {
	clauses := make([]string, 0, len(terms))
	args := make([]interface{}, 0, 2*len(terms))

	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		clauses = append(clauses, "LOWER(interactions.channel) LIKE ? ESCAPE '!' OR LOWER(interactions.description) LIKE ? ESCAPE '!'")
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

// ListByCompany retrieves one page of a company's interactions
func (r *GormInteractionRepository) ListByCompany(companyID uint64, page utils.PaginationParams) ([]models.Interaction, int64, error) {
	return r.listScoped("interactions.company_id = ?", companyID, page, "Project")
}

// ListByProject retrieves one page of a project's interactions
func (r *GormInteractionRepository) ListByProject(projectID uint64, page utils.PaginationParams) ([]models.Interaction, int64, error) {
	return r.listScoped("interactions.project_id = ?", projectID, page)
}

func (r *GormInteractionRepository) listScoped(cond string, id uint64, page utils.PaginationParams, preload ...string) ([]models.Interaction, int64, error) {
	query := r.db.Model(&models.Interaction{}).Where(cond, id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, p := range preload {
		query = query.Preload(p)
	}

	var interactions []models.Interaction
	if err := query.Order(interactionOrder).
		Scopes(database.Paginate(page)).
		Find(&interactions).Error; err != nil {
		return nil, 0, err
	}

	return interactions, total, nil
}

// GradesByCompany returns the grade of every interaction of a company
func (r *GormInteractionRepository) GradesByCompany(companyID uint64) ([]int, error) {
	var grades []int
	err := r.db.Model(&models.Interaction{}).
		Where("company_id = ?", companyID).
		Pluck("grade", &grades).Error
	return grades, err
}

// DistinctChannels lists the channels present among stored interactions
func (r *GormInteractionRepository) DistinctChannels() ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.Model(&models.Interaction{}).
		Distinct("channel").
		Order("channel ASC").
		Pluck("channel", &channels).Error
	return channels, err
}

// RecentDescriptions returns the newest interaction descriptions
func (r *GormInteractionRepository) RecentDescriptions(limit int) ([]string, error) {
	var descriptions []string
	err := r.db.Model(&models.Interaction{}).
		Order("id DESC").
		Limit(limit).
		Pluck("description", &descriptions).Error
	return descriptions, err
}
