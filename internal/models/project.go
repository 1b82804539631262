package models

import "time"

type Project struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(250);not null" json:"title"`
	CompanyID   *uint64   `gorm:"index" json:"company_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	FinalDate   time.Time `gorm:"not null" json:"final_date"`
	Price       uint64    `gorm:"not null" json:"price"`

	// Relations
	Company      *Company      `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Interactions []Interaction `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}
