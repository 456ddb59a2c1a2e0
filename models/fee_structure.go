package models

import (
	"time"
)

// FeeType represents the category of a fee component
type FeeType string

const (
	FeeTypeTuition       FeeType = "TUITION"
	FeeTypeAdmission     FeeType = "ADMISSION"
	FeeTypeTransport     FeeType = "TRANSPORT"
	FeeTypeLibrary       FeeType = "LIBRARY"
	FeeTypeLaboratory    FeeType = "LABORATORY"
	FeeTypeExamination   FeeType = "EXAMINATION"
	FeeTypeSports        FeeType = "SPORTS"
	FeeTypeMiscellaneous FeeType = "MISCELLANEOUS"
)

// FeeFrequency represents how often a fee component is charged
type FeeFrequency string

const (
	FeeFrequencyOneTime    FeeFrequency = "ONE_TIME"
	FeeFrequencyMonthly    FeeFrequency = "MONTHLY"
	FeeFrequencyQuarterly  FeeFrequency = "QUARTERLY"
	FeeFrequencyHalfYearly FeeFrequency = "HALF_YEARLY"
	FeeFrequencyAnnual     FeeFrequency = "ANNUAL"
)

// FeeStructure represents a named bundle of fee components for an academic year.
// Once any student fee account references it, the structure is locked: components
// can no longer be edited and the structure can only be archived, not deleted.
type FeeStructure struct {
	ID           uint           `gorm:"primaryKey;autoIncrement"`
	Name         string         `gorm:"column:name;not null;size:100"`
	Description  string         `gorm:"column:description;size:255"`
	AcademicYear string         `gorm:"column:academic_year;not null;size:20;index"`
	AcademicUnit *string        `gorm:"column:academic_unit;size:50"` // nil applies to all units
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	IsLocked     bool           `gorm:"column:is_locked;not null;default:false"`
	Components   []FeeComponent `gorm:"foreignKey:FeeStructureID"`
	CreatedAt    time.Time      `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (FeeStructure) TableName() string {
	return "fee_structures"
}

// TotalAmount sums the amounts of all components
func (fs *FeeStructure) TotalAmount() float64 {
	var total float64
	for _, c := range fs.Components {
		total += c.Amount
	}
	return total
}

// FeeComponent represents a single charge within a fee structure
type FeeComponent struct {
	ID             uint         `gorm:"primaryKey;autoIncrement"`
	FeeStructureID uint         `gorm:"column:fee_structure_id;not null;index"`
	Name           string       `gorm:"column:name;not null;size:100"`
	FeeType        FeeType      `gorm:"column:fee_type;type:varchar(20);not null"`
	Amount         float64      `gorm:"column:amount;type:decimal(12,2);not null"`
	Frequency      FeeFrequency `gorm:"column:frequency;type:varchar(20);not null;default:'ANNUAL'"`
	IsMandatory    bool         `gorm:"column:is_mandatory;not null;default:true"`
	CreatedAt      time.Time    `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (FeeComponent) TableName() string {
	return "fee_components"
}

// IsValid reports whether the fee type is one of the known categories
func (t FeeType) IsValid() bool {
	switch t {
	case FeeTypeTuition, FeeTypeAdmission, FeeTypeTransport, FeeTypeLibrary,
		FeeTypeLaboratory, FeeTypeExamination, FeeTypeSports, FeeTypeMiscellaneous:
		return true
	}
	return false
}

// IsValid reports whether the frequency is one of the known values
func (f FeeFrequency) IsValid() bool {
	switch f {
	case FeeFrequencyOneTime, FeeFrequencyMonthly, FeeFrequencyQuarterly,
		FeeFrequencyHalfYearly, FeeFrequencyAnnual:
		return true
	}
	return false
}
