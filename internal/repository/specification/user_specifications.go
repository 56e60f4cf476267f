package specification

import (
	"gorm.io/gorm"
)

type UserByID struct {
	ID string
}

func (s UserByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type UserOwnedBy struct {
	UserID string
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// RetentionEnabled selects users whose history expires.
type RetentionEnabled struct{}

func (s RetentionEnabled) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("history_retention <> ?", "off")
}
