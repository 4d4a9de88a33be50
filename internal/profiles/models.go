package profiles

import "time"

const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusOffline = "offline"
)

func ValidStatus(s string) bool {
	return s == StatusOnline || s == StatusAway || s == StatusOffline
}

// Profile shares its id with the identity row. Status and LastSeen are
// owned by the presence tracker, the rest by the profile owner.
type Profile struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64);index;not null" json:"username"`
	FullName  string    `gorm:"type:varchar(128)" json:"full_name"`
	AvatarURL string    `gorm:"type:varchar(256)" json:"avatar_url"`
	Status    string    `gorm:"type:varchar(16);not null;default:offline" json:"status"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "user_profiles" }
