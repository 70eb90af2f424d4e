package repo

import "gorm.io/gorm"

// GormRepo is the credential store. All writes are single-row statements, so a
// request cancelled mid-write never leaves a half-created user behind.
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
