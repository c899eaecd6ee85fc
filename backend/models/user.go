package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:student" json:"role"` // student, instructor, admin
	AvatarURL    string `json:"avatar_url"`
	Bio          string `json:"bio"`
}
