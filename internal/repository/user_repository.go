package repository

import (
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Omit(clause.Associations).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update saves profile fields of a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Model(user).
		Select("password_hash", "first_name", "last_name", "email", "photo", "bio").
		Updates(user).Error
}

// ListCapabilities returns the capability strings granted to a user
func (r *GormUserRepository) ListCapabilities(userID uint64) ([]string, error) {
	var capabilities []string
	err := r.db.Model(&models.UserPermission{}).
		Where("user_id = ?", userID).
		Order("capability ASC").
		Pluck("capability", &capabilities).Error
	return capabilities, err
}

// Grant adds capabilities to a user, ignoring ones already held
func (r *GormUserRepository) Grant(userID uint64, capabilities []string) error {
	if len(capabilities) == 0 {
		return nil
	}

	rows := make([]models.UserPermission, len(capabilities))
	for i, capability := range capabilities {
		rows[i] = models.UserPermission{UserID: userID, Capability: capability}
	}

	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// Revoke removes capabilities from a user
func (r *GormUserRepository) Revoke(userID uint64, capabilities []string) error {
	if len(capabilities) == 0 {
		return nil
	}

	return r.db.Where("user_id = ? AND capability IN ?", userID, capabilities).
		Delete(&models.UserPermission{}).Error
}
