package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    string    `gorm:"type:varchar(255);not null;index"` // Owner for data isolation and sweeps
	Title     string    `gorm:"type:text;not null;default:'New Chat'"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;index;autoUpdateTime:false"` // Set explicitly once per inbound message
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
