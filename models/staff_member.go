package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff role values.
const (
	StaffRoleServer  = "server"
	StaffRoleChef    = "chef"
	StaffRoleHost    = "host"
	StaffRoleManager = "manager"
)

// Staff status values.
const (
	StaffStatusActive   = "active"
	StaffStatusInactive = "inactive"
)

// StaffMember is a tippable staff slot within a restaurant. UserID is nil
// until a worker account claims the slot. QrKey is the bearer capability
// printed on the staff member's QR code; anyone holding it can open the
// public tipping page.
type StaffMember struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"restaurantId"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	DisplayName  string     `gorm:"not null" json:"displayName"`
	Role         string     `gorm:"default:server" json:"role"`
	Status       string     `gorm:"default:active" json:"status"`
	QrKey        string     `gorm:"uniqueIndex;not null" json:"qrKey"`
	UpiID        *string    `json:"upiId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (s *StaffMember) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ValidStaffRole reports whether role is one of the staff role enum values.
func ValidStaffRole(role string) bool {
	switch role {
	case StaffRoleServer, StaffRoleChef, StaffRoleHost, StaffRoleManager:
		return true
	}
	return false
}

// ValidStaffStatus reports whether status is one of the staff status enum values.
func ValidStaffStatus(status string) bool {
	return status == StaffStatusActive || status == StaffStatusInactive
}
