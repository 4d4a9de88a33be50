package chat

import (
	"time"

	"github.com/plantpulse/messaging/internal/profiles"
)

const (
	MessageTypeText = "text"

	// Status transitions are monotonic. Nothing in the server produces
	// "delivered" today; clients jump sent -> read on view.
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Conversation is a two-party thread. The pair is stored normalized
// (UserLowID < UserHighID) so the unique index makes get-or-create
// race-safe for any call order.
type Conversation struct {
	ID         string    `gorm:"primaryKey;size:26" json:"id"` // ULID
	UserLowID  uint64    `gorm:"not null;index:uniq_conv_pair,unique,priority:1" json:"-"`
	UserHighID uint64    `gorm:"not null;index:uniq_conv_pair,unique,priority:2" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

// Participant carries one side's independent read cursor.
type Participant struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"size:26;not null;index:uniq_conv_user,unique,priority:1" json:"conversation_id"`
	UserID         uint64    `gorm:"not null;index:uniq_conv_user,unique,priority:2;index" json:"user_id"`
	LastReadAt     time.Time `json:"last_read_at"`
}

func (Participant) TableName() string { return "conversation_participants" }

// Message is immutable except for status transitions and the
// soft-delete marker. ExpiresAt is the retention horizon; expired rows
// are invisible to every read path and purged by cmd/retention.
type Message struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string     `gorm:"size:26;not null;index:idx_msg_conv_created,priority:1" json:"conversation_id"`
	SenderID       uint64     `gorm:"not null;index" json:"sender_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	MessageType    string     `gorm:"type:varchar(16);not null;default:text" json:"message_type"`
	Status         string     `gorm:"type:varchar(16);not null;default:sent" json:"status"`
	ReplyTo        *uint64    `gorm:"index" json:"reply_to"`
	CreatedAt      time.Time  `gorm:"index:idx_msg_conv_created,priority:2" json:"created_at"`
	ExpiresAt      time.Time  `gorm:"index;not null" json:"expires_at"`
	DeletedAt      *time.Time `json:"-"`
}

func (Message) TableName() string { return "messages" }

type Attachment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID uint64    `gorm:"not null;index" json:"message_id"`
	FileName  string    `gorm:"type:varchar(256);not null" json:"file_name"`
	FileURL   string    `gorm:"type:varchar(512);not null" json:"file_url"`
	FileType  string    `gorm:"type:varchar(64)" json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "message_attachments" }

// MessageWithSender is a message joined with its sender profile and
// attachments, the shape the message endpoints return.
type MessageWithSender struct {
	Message
	Sender      profiles.Profile `gorm:"-" json:"sender"`
	Attachments []Attachment     `gorm:"-" json:"attachments"`
}

// ConversationSummary is one row of the conversation list: the other
// side's profile, the latest visible message and the caller's unread
// count.
type ConversationSummary struct {
	ID               string             `json:"id"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	OtherParticipant *profiles.Profile  `json:"other_participant"`
	LastMessage      *MessageWithSender `json:"last_message"`
	UnreadCount      int64              `json:"unread_count"`
}
