package models

import (
	"time"

	"github.com/yukikurage/crm-api/internal/constants"
)

type Company struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `gorm:"type:varchar(200);not null" json:"address"`
	CreatedAt   time.Time `gorm:"index" json:"date_create"`
	UpdatedAt   time.Time `json:"date_edit"`

	// Relations
	Managers []CompanyManager `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"managers,omitempty"`
	Phones   []Phone          `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"phones,omitempty"`
	Emails   []CompanyEmail   `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"emails,omitempty"`
	Projects []Project        `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`

	Interactions []Interaction `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"-"`
}

// CompanyManager is a contact person at a company.
type CompanyManager struct {
	ID        uint64  `gorm:"primarykey" json:"id"`
	CompanyID *uint64 `gorm:"index" json:"company_id"`
	Name      string  `gorm:"type:varchar(20);not null" json:"name"`
	Surname   string  `gorm:"type:varchar(50);not null" json:"surname"`
	Position  string  `gorm:"type:varchar(100);not null" json:"position"`
}

func (m CompanyManager) FullName() string {
	return m.Name + " " + m.Surname
}

type CompanyEmail struct {
	ID        uint64  `gorm:"primarykey" json:"id"`
	CompanyID *uint64 `gorm:"index" json:"company_id"`
	Email     string  `gorm:"type:varchar(100);not null" json:"email"`
}

type Phone struct {
	ID        uint64  `gorm:"primarykey" json:"id"`
	CompanyID *uint64 `gorm:"index" json:"company_id"`
	Phone     string  `gorm:"type:varchar(10);not null" json:"phone"`
}

// Display returns the number with the country prefix.
func (p Phone) Display() string {
	return constants.PhoneCountryPrefix + p.Phone
}
