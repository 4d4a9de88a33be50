package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/chat"
	"github.com/plantpulse/messaging/internal/contacts"
	"github.com/plantpulse/messaging/internal/models"
	"github.com/plantpulse/messaging/internal/profiles"
)

func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&profiles.Profile{},
		&contacts.Contact{},
		&chat.Conversation{},
		&chat.Participant{},
		&chat.Message{},
		&chat.Attachment{},
	)
}
