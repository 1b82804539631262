package models

import (
	"slices"
	"time"
)

type Channel string

const (
	ChannelCall   Channel = "call"
	ChannelLetter Channel = "letter"
	ChannelEmail  Channel = "email"
	ChannelSite   Channel = "site"
)

// Channels lists every valid channel in display order.
var Channels = []Channel{ChannelCall, ChannelLetter, ChannelEmail, ChannelSite}

func (c Channel) Valid() bool {
	return slices.Contains(Channels, c)
}

const (
	MinGrade = 1
	MaxGrade = 5
)

// ValidGrade reports whether grade is within [MinGrade, MaxGrade].
func ValidGrade(grade int) bool {
	return grade >= MinGrade && grade <= MaxGrade
}

type Interaction struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	ProjectID   uint64    `gorm:"not null;index" json:"project_id"`
	CompanyID   uint64    `gorm:"not null;index" json:"company_id"`
	Channel     Channel   `gorm:"type:varchar(100);not null" json:"channel"`
	ManagerID   *uint64   `gorm:"index" json:"manager_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Grade       int       `gorm:"not null;index" json:"grade"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Manager *User    `gorm:"foreignKey:ManagerID;constraint:OnDelete:SET NULL" json:"manager,omitempty"`
}

// OwnedBy reports whether userID is the recorded manager.
func (i Interaction) OwnedBy(userID uint64) bool {
	return i.ManagerID != nil && *i.ManagerID == userID
}
