package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// OrderByActivity lists sessions most recently active first.
func OrderByActivity(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at DESC").Order("id ASC")
}
