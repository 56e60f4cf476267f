package model

import (
	"time"
)

type User struct {
	Id               string    `gorm:"type:varchar(255);primaryKey"`
	Name             string    `gorm:"type:varchar(255);not null"`
	Email            string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	HistoryRetention string    `gorm:"type:varchar(8);not null;default:'off'"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
