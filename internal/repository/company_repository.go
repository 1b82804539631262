package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCompanyRepository is a GORM implementation of CompanyRepository
type GormCompanyRepository struct {
	db *gorm.DB
}

var (
	// ErrSaveCompany is returned when writing the company row fails inside the save transaction.
	ErrSaveCompany = errors.New("company repository: save company failed")
	// ErrSaveDependents is returned when writing a dependent row fails inside the save transaction.
	ErrSaveDependents = errors.New("company repository: save dependents failed")
)

var companyOrders = map[CompanyOrder]string{
	OrderNameAsc:        "companies.name ASC, companies.id ASC",
	OrderNameDesc:       "companies.name DESC, companies.id DESC",
	OrderDateCreateAsc:  "companies.created_at ASC, companies.id ASC",
	OrderDateCreateDesc: "companies.created_at DESC, companies.id DESC",
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &GormCompanyRepository{db: db}
}

// List retrieves one page of companies in the given order
func (r *GormCompanyRepository) List(order CompanyOrder, page utils.PaginationParams) ([]models.Company, int64, error) {
	orderBy, ok := companyOrders[order]
	if !ok {
		orderBy = companyOrders[OrderNameAsc]
	}

	var total int64
	if err := r.db.Model(&models.Company{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []models.Company
	if err := r.db.Order(orderBy).Scopes(database.Paginate(page)).Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

// FindByID finds a company by ID with optional preloading
func (r *GormCompanyRepository) FindByID(id uint64, preload ...string) (*models.Company, error) {
	var company models.Company
	query := r.db

	for _, p := range preload {
		query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	}

	if err := query.First(&company, id).Error; err != nil {
		return nil, err
	}

	return &company, nil
}

// Exists reports whether a company with the ID exists
func (r *GormCompanyRepository) Exists(id uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Company{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// SaveWithDependents saves the company and its submitted collections atomically.
func (r *GormCompanyRepository) SaveWithDependents(company *models.Company, deps CompanyDependents, verify func(ExistingDependents) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		creating := company.ID == 0

		if creating {
			if err := tx.Omit(clause.Associations).Create(company).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrSaveCompany, err)
			}
		} else {
			if err := tx.Omit(clause.Associations).Save(company).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrSaveCompany, err)
			}
		}

		existing := ExistingDependents{
			ManagerIDs: map[uint64]struct{}{},
			PhoneIDs:   map[uint64]struct{}{},
			EmailIDs:   map[uint64]struct{}{},
		}
		if !creating {
			var err error
			if deps.Managers != nil {
				if existing.ManagerIDs, err = dependentIDs(tx, &models.CompanyManager{}, company.ID); err != nil {
					return err
				}
			}
			if deps.Phones != nil {
				if existing.PhoneIDs, err = dependentIDs(tx, &models.Phone{}, company.ID); err != nil {
					return err
				}
			}
			if deps.Emails != nil {
				if existing.EmailIDs, err = dependentIDs(tx, &models.CompanyEmail{}, company.ID); err != nil {
					return err
				}
			}
		}

		if verify != nil {
			if err := verify(existing); err != nil {
				return err
			}
		}

		companyID := company.ID
		if deps.Managers != nil {
			for i := range deps.Managers {
				deps.Managers[i].CompanyID = &companyID
			}
			if err := syncDependents(tx, companyID, creating, deps.Managers,
				func(m *models.CompanyManager) uint64 { return m.ID },
				"company_id", "name", "surname", "position"); err != nil {
				return err
			}
			company.Managers = deps.Managers
		}
		if deps.Phones != nil {
			for i := range deps.Phones {
				deps.Phones[i].CompanyID = &companyID
			}
			if err := syncDependents(tx, companyID, creating, deps.Phones,
				func(p *models.Phone) uint64 { return p.ID },
				"company_id", "phone"); err != nil {
				return err
			}
			company.Phones = deps.Phones
		}
		if deps.Emails != nil {
			for i := range deps.Emails {
				deps.Emails[i].CompanyID = &companyID
			}
			if err := syncDependents(tx, companyID, creating, deps.Emails,
				func(e *models.CompanyEmail) uint64 { return e.ID },
				"company_id", "email"); err != nil {
				return err
			}
			company.Emails = deps.Emails
		}

		return nil
	})
}

func dependentIDs(tx *gorm.DB, model interface{}, companyID uint64) (map[uint64]struct{}, error) {
	var ids []uint64
	if err := tx.Model(model).Where("company_id = ?", companyID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveDependents, err)
	}

	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// syncDependents makes the stored rows of one collection match rows:
// stored rows missing from rows are deleted, rows with an ID are updated and
// rows without one are inserted.
func syncDependents[T any](tx *gorm.DB, companyID uint64, creating bool, rows []T, idOf func(*T) uint64, columns ...string) error {
	if !creating {
		keep := make([]uint64, 0, len(rows))
		for i := range rows {
			if id := idOf(&rows[i]); id != 0 {
				keep = append(keep, id)
			}
		}

		query := tx.Where("company_id = ?", companyID)
		if len(keep) > 0 {
			query = query.Where("id NOT IN ?", keep)
		}
		if err := query.Delete(new(T)).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrSaveDependents, err)
		}
	}

	for i := range rows {
		row := &rows[i]
		if idOf(row) == 0 {
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrSaveDependents, err)
			}
			continue
		}
		if err := tx.Model(row).Select(columns).Updates(row).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrSaveDependents, err)
		}
	}

	return nil
}

// Delete deletes a company and all related data in a transaction
func (r *GormCompanyRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&models.Interaction{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id IN (?)", tx.Model(&models.Project{}).Select("id").Where("company_id = ?", id)).
			Delete(&models.Interaction{}).Error; err != nil {
			return err
		}

		for _, dependent := range []interface{}{&models.Project{}, &models.CompanyManager{}, &models.Phone{}, &models.CompanyEmail{}} {
			if err := tx.Where("company_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Company{}, id).Error
	})
}
