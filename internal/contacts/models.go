// Package contacts holds the directed contact graph. Edges are
// one-directional: adding a contact needs no acceptance from the other
// side, and no reciprocal edge is created. The status enum keeps the
// pending/blocked values even though only accepted edges are written.
package contacts

import (
	"time"

	"github.com/plantpulse/messaging/internal/profiles"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusBlocked  = "blocked"
)

type Contact struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;index:uniq_user_contact,unique,priority:1" json:"user_id"`
	ContactID uint64    `gorm:"not null;index:uniq_user_contact,unique,priority:2" json:"contact_id"`
	Status    string    `gorm:"type:varchar(16);not null;default:accepted" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (Contact) TableName() string { return "user_contacts" }

// ContactWithProfile is an edge joined with the target profile, the
// shape the contact list endpoint returns.
type ContactWithProfile struct {
	Contact
	Profile profiles.Profile `gorm:"-" json:"contact"`
}
