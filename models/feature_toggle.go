package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewModerationKey is the toggle consulted on review creation: when
// enabled, new reviews start unapproved and wait for moderation.
const ReviewModerationKey = "review_moderation"

type FeatureToggle struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null" json:"key"`
	Label     string    `gorm:"not null" json:"label"`
	Enabled   bool      `gorm:"default:false" json:"enabled"`
	Audience  string    `gorm:"default:all" json:"audience"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ft *FeatureToggle) BeforeCreate(tx *gorm.DB) error {
	if ft.ID == uuid.Nil {
		ft.ID = uuid.New()
	}
	return nil
}
