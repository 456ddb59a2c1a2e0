package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Student represents an enrolled student
type Student struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	FirstName       string    `gorm:"column:first_name;not null;size:50"`
	LastName        string    `gorm:"column:last_name;not null;size:50"`
	AdmissionNumber string    `gorm:"column:admission_number;unique;not null;size:30;index"`
	ClassName       string    `gorm:"column:class_name;size:50"`
	GuardianName    string    `gorm:"column:guardian_name;size:100"`
	GuardianEmail   string    `gorm:"column:guardian_email;size:100"`
	CreatedAt       time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Student) TableName() string {
	return "students"
}

// BeforeCreate validates the student before insertion
func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if len(s.FirstName) < 1 || len(s.FirstName) > 50 {
		return errors.New("first name must be between 1 and 50 characters")
	}
	if len(s.AdmissionNumber) < 1 || len(s.AdmissionNumber) > 30 {
		return errors.New("admission number must be between 1 and 30 characters")
	}
	return nil
}
