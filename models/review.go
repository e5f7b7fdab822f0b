package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is customer feedback left against a staff member, optionally
// linked to a tip. Approved flips only through the moderation endpoint;
// moderation is repeatable in both directions.
type Review struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StaffMemberID uuid.UUID   `gorm:"type:uuid;not null;index" json:"staffMemberId"`
	StaffMember   StaffMember `gorm:"foreignKey:StaffMemberID" json:"staffMember,omitempty"`
	Rating        int         `gorm:"not null" json:"rating"`
	Comment       *string     `json:"comment,omitempty"`
	TipID         *uuid.UUID  `gorm:"type:uuid" json:"tipId,omitempty"`
	// No column default: a false here must reach the insert, since reviews
	// created under moderation start unapproved.
	Approved      bool        `json:"approved"`
	ApprovedBy    *uuid.UUID  `gorm:"type:uuid" json:"approvedBy,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
