package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment links a user to a course they are taking. There is deliberately
// no uniqueness constraint on (user_id, course_id); duplicates are rejected
// at the application layer.
type Enrollment struct {
	gorm.Model
	UserID         uint       `json:"user_id"`
	CourseID       uint       `json:"course_id"`
	Course         *Course    `json:"course,omitempty"`
	EnrolledAt     time.Time  `json:"enrolled_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	Progress       int        `json:"progress"` // 0-100, derived from lesson progress
}

type LessonProgress struct {
	gorm.Model
	UserID       uint       `json:"user_id"`
	LessonID     uint       `json:"lesson_id"`
	EnrollmentID uint       `json:"enrollment_id"`
	CompletedAt  *time.Time `json:"completed_at"`
	TimeSpent    int        `json:"time_spent"`    // seconds
	LastPosition int        `json:"last_position"` // resume offset
}

type Certificate struct {
	gorm.Model
	UserID         uint       `json:"user_id"`
	CourseID       uint       `json:"course_id"`
	EnrollmentID   uint       `json:"enrollment_id"`
	SerialNumber   string     `gorm:"uniqueIndex" json:"serial_number"`
	CertificateURL string     `json:"certificate_url"`
	IssuedAt       time.Time  `json:"issued_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
}
