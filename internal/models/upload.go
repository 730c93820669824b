package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload records an image written to object storage on behalf of a user
type Upload struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UserID      string    `gorm:"size:128;not null;index" json:"user_id"`
	RecipeID    string    `gorm:"size:128" json:"recipe_id"`
	StoragePath string    `gorm:"size:512;not null;uniqueIndex" json:"storage_path"`
	ContentType string    `gorm:"size:100;not null" json:"content_type"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
}

// BeforeCreate assigns the primary key
func (u *Upload) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
