package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150)" json:"last_name"`
	Email        string    `gorm:"type:varchar(254)" json:"email"`
	Photo        string    `gorm:"type:varchar(255)" json:"photo"`
	Bio          string    `gorm:"type:text" json:"bio"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Permissions []UserPermission `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserPermission grants one capability, stored by its string form.
type UserPermission struct {
	UserID     uint64 `gorm:"primarykey" json:"user_id"`
	Capability string `gorm:"primarykey;type:varchar(100)" json:"capability"`
}
