package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title              string   `json:"title"`
	Slug               string   `gorm:"uniqueIndex" json:"slug"`
	Description        string   `json:"description"`
	InstructorID       uint     `json:"instructor_id"`
	Instructor         *User    `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Category           string   `json:"category"`
	Tags               []string `gorm:"type:text;serializer:json" json:"tags"`
	Level              string   `json:"level"`  // beginner, intermediate, advanced
	Status             string   `gorm:"default:draft" json:"status"` // draft, published, archived
	Price              float64  `json:"price"`
	Rating             float64  `gorm:"check:rating >= 0 AND rating <= 5" json:"rating"`
	ReviewCount        int      `json:"review_count"`
	EnrollmentCount    int      `json:"enrollment_count"`
	Featured           bool     `json:"featured"`
	Prerequisites      []string `gorm:"type:text;serializer:json" json:"prerequisites"`
	LearningObjectives []string `gorm:"type:text;serializer:json" json:"learning_objectives"`
	Lessons            []Lesson `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

type Lesson struct {
	gorm.Model
	CourseID      uint   `gorm:"uniqueIndex:idx_lessons_course_sequence" json:"course_id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Type          string `json:"type"` // video, text, quiz, assignment
	Content       string `json:"content"`
	VideoURL      string `json:"video_url"`
	SequenceOrder int    `gorm:"uniqueIndex:idx_lessons_course_sequence" json:"sequence_order"`
	Free          bool   `json:"free"`
}

type Category struct {
	gorm.Model
	Name         string `gorm:"unique;not null" json:"name"`
	Slug         string `gorm:"unique;not null" json:"slug"`
	Icon         string `json:"icon"`
	DisplayOrder int    `json:"display_order"`
}

type Review struct {
	gorm.Model
	UserID   uint   `json:"user_id"`
	CourseID uint   `json:"course_id"`
	Rating   int    `gorm:"check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment  string `json:"comment"`
}
