package models

import "gorm.io/gorm"

// Review is a student's rating of a course they take. One per user and course.
type Review struct {
	gorm.Model
	UserID    uint   `gorm:"not null;uniqueIndex:idx_review_user_course" json:"user_id"`
	CourseID  uint   `gorm:"not null;uniqueIndex:idx_review_user_course;index" json:"course_id"`
	Rating    int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string `gorm:"type:text;default:''" json:"comment"`
	IsDeleted bool   `gorm:"default:false" json:"-"`
	User      User   `gorm:"foreignKey:UserID" json:"-"`
}
