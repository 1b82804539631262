package models

// Keyword is a stored filter term for interaction listings.
type Keyword struct {
	ID      uint64 `gorm:"primarykey" json:"id"`
	Keyword string `gorm:"type:varchar(250);uniqueIndex;not null" json:"keyword"`
}
