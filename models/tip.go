package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TipSourceQR   = "qr"
	TipSourceLink = "link"
	TipSourcePOS  = "pos"
)

const (
	TipStatusSucceeded = "succeeded"
	TipStatusPending   = "pending"
	TipStatusFailed    = "failed"
)

// Tip is an append-only ledger entry. Amounts are stored in currency
// minor units (paise for INR); there is no update or delete path.
type Tip struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StaffMemberID uuid.UUID   `gorm:"type:uuid;not null;index" json:"staffMemberId"`
	StaffMember   StaffMember `gorm:"foreignKey:StaffMemberID" json:"staffMember,omitempty"`
	AmountCents   int64       `gorm:"not null" json:"amountCents"`
	Currency      string      `gorm:"default:INR" json:"currency"`
	PayerName     *string     `json:"payerName,omitempty"`
	Message       *string     `json:"message,omitempty"`
	Source        string      `gorm:"default:qr" json:"source"`
	Status        string      `gorm:"default:succeeded" json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func (t *Tip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ValidTipSource reports whether source is one of the tip source enum values.
func ValidTipSource(source string) bool {
	switch source {
	case TipSourceQR, TipSourceLink, TipSourcePOS:
		return true
	}
	return false
}
