package repository

import (
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// GormKeywordRepository is a GORM implementation of KeywordRepository
type GormKeywordRepository struct {
	db *gorm.DB
}

// NewKeywordRepository creates a new KeywordRepository
func NewKeywordRepository(db *gorm.DB) KeywordRepository {
	return &GormKeywordRepository{db: db}
}

// Create creates a new keyword
func (r *GormKeywordRepository) Create(keyword *models.Keyword) error {
	return r.db.Create(keyword).Error
}

// FindByKeyword finds a keyword by its exact value
func (r *GormKeywordRepository) FindByKeyword(keyword string) (*models.Keyword, error) {
	var kw models.Keyword
	if err := r.db.Where("keyword = ?", keyword).First(&kw).Error; err != nil {
		return nil, err
	}
	return &kw, nil
}

// ListValues returns every keyword string in alphabetical order
func (r *GormKeywordRepository) ListValues() ([]string, error) {
	var values []string
	err := r.db.Model(&models.Keyword{}).Order("keyword ASC").Pluck("keyword", &values).Error
	return values, err
}
