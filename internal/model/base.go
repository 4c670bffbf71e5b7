package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the fields every record owns. Slug is assigned once at creation
// and never changes; a non-null DeletedAt hides the row from all standard reads.
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Slug      string         `gorm:"uniqueIndex;size:64" json:"slug"`
	Status    bool           `gorm:"default:true" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// GetID returns the primary key after the record has been persisted.
func (b Base) GetID() uint {
	return b.ID
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.Slug == "" {
		b.Slug = uuid.NewString()
	}
	return nil
}
