package services

import (
	"errors"
	"fmt"
	"time"

	"schoolpay/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeeComponentDTO represents a component within a structure request
type FeeComponentDTO struct {
	Name        string              `json:"name" validate:"required,min=2,max=100"`
	FeeType     models.FeeType      `json:"fee_type" validate:"required"`
	Amount      float64             `json:"amount" validate:"required,gt=0"`
	Frequency   models.FeeFrequency `json:"frequency" validate:"required"`
	IsMandatory bool                `json:"is_mandatory"`
}

// CreateFeeStructureDTO represents a request to create a fee structure
type CreateFeeStructureDTO struct {
	Name         string            `json:"name" validate:"required,min=2,max=100"`
	Description  string            `json:"description" validate:"max=255"`
	AcademicYear string            `json:"academic_year" validate:"required,min=4,max=20"`
	AcademicUnit string            `json:"academic_unit" validate:"max=50"` // empty applies to all units
	Components   []FeeComponentDTO `json:"components" validate:"required,min=1,dive"`
}

// AssignStudentDTO represents a request to put a student on a fee structure
type AssignStudentDTO struct {
	StudentID   uint                `json:"student_id" validate:"required"`
	DueDate     time.Time           `json:"due_date" validate:"required"`
	Adjustments []AdjustmentRequest `json:"adjustments" validate:"dive"`
}

// FeeStructureService manages fee structures, their components and student
// assignment. A structure locks the moment its first student fee account is
// created; component edits on a locked structure are rejected.
type FeeStructureService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewFeeStructureService creates a new FeeStructureService instance
func NewFeeStructureService(db *gorm.DB) *FeeStructureService {
	return &FeeStructureService{
		db:        db,
		validator: validator.New(),
	}
}

// validateComponent checks the enum fields of a component request
func validateComponent(dto FeeComponentDTO) error {
	if !dto.FeeType.IsValid() {
		return &ValidationError{Message: fmt.Sprintf("unknown fee type: %s", dto.FeeType)}
	}
	if !dto.Frequency.IsValid() {
		return &ValidationError{Message: fmt.Sprintf("unknown fee frequency: %s", dto.Frequency)}
	}
	return nil
}

// Create creates a fee structure together with its components
func (s *FeeStructureService) Create(dto CreateFeeStructureDTO) (*models.FeeStructure, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, translateValidationErrors(err)
	}
	for _, c := range dto.Components {
		if err := validateComponent(c); err != nil {
			return nil, err
		}
	}

	structure := &models.FeeStructure{
		Name:         dto.Name,
		Description:  dto.Description,
		AcademicYear: dto.AcademicYear,
		IsActive:     true,
	}
	if dto.AcademicUnit != "" {
		unit := dto.AcademicUnit
		structure.AcademicUnit = &unit
	}
	for _, c := range dto.Components {
		structure.Components = append(structure.Components, models.FeeComponent{
			Name:        c.Name,
			FeeType:     c.FeeType,
			Amount:      c.Amount,
			Frequency:   c.Frequency,
			IsMandatory: c.IsMandatory,
		})
	}

	if err := s.db.Create(structure).Error; err != nil {
		return nil, errors.New("failed to create fee structure")
	}
	return structure, nil
}

// GetByID returns a fee structure with its components
func (s *FeeStructureService) GetByID(id uint) (*models.FeeStructure, error) {
	var structure models.FeeStructure
	if err := s.db.Preload("Components").First(&structure, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "fee structure"}
		}
		return nil, errors.New("failed to load fee structure")
	}
	return &structure, nil
}

// loadStructureForUpdate locks a structure row and rejects mutation when it is
// locked by an existing student assignment
func loadStructureForUpdate(tx *gorm.DB, id uint) (*models.FeeStructure, error) {
	var structure models.FeeStructure
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&structure, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "fee structure"}
		}
		return nil, errors.New("failed to load fee structure")
	}
	if structure.IsLocked {
		return nil, &ConflictError{Message: "fee structure is locked and can no longer be edited"}
	}
	return &structure, nil
}

// AddComponent appends a component to an unlocked structure
func (s *FeeStructureService) AddComponent(structureID uint, dto FeeComponentDTO) (*models.FeeComponent, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, translateValidationErrors(err)
	}
	if err := validateComponent(dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	structure, err := loadStructureForUpdate(tx, structureID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	component := &models.FeeComponent{
		FeeStructureID: structure.ID,
		Name:           dto.Name,
		FeeType:        dto.FeeType,
		Amount:         dto.Amount,
		Frequency:      dto.Frequency,
		IsMandatory:    dto.IsMandatory,
	}
	if err := tx.Create(component).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to save fee component")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}
	return component, nil
}

// UpdateComponent edits a component of an unlocked structure
func (s *FeeStructureService) UpdateComponent(componentID uint, dto FeeComponentDTO) (*models.FeeComponent, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, translateValidationErrors(err)
	}
	if err := validateComponent(dto); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	var component models.FeeComponent
	if err := tx.First(&component, componentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "fee component"}
		}
		return nil, errors.New("failed to load fee component")
	}

	if _, err := loadStructureForUpdate(tx, component.FeeStructureID); err != nil {
		tx.Rollback()
		return nil, err
	}

	component.Name = dto.Name
	component.FeeType = dto.FeeType
	component.Amount = dto.Amount
	component.Frequency = dto.Frequency
	component.IsMandatory = dto.IsMandatory
	component.UpdatedAt = time.Now()

	if err := tx.Save(&component).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to update fee component")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}
	return &component, nil
}

// Archive soft-archives a structure. Locked structures are never deleted, so
// archiving is the only way to retire one.
func (s *FeeStructureService) Archive(structureID uint) (*models.FeeStructure, error) {
	var structure models.FeeStructure
	if err := s.db.First(&structure, structureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "fee structure"}
		}
		return nil, errors.New("failed to load fee structure")
	}

	if !structure.IsActive {
		return nil, &ConflictError{Message: "fee structure is already archived"}
	}

	structure.IsActive = false
	structure.UpdatedAt = time.Now()
	if err := s.db.Save(&structure).Error; err != nil {
		return nil, errors.New("failed to archive fee structure")
	}
	return &structure, nil
}

// AssignStudent creates a student fee account from a structure, applying any
// setup-time adjustments, and locks the structure on first assignment
func (s *FeeStructureService) AssignStudent(structureID uint, dto AssignStudentDTO) (*models.StudentFee, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, translateValidationErrors(err)
	}

	// Start the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	// Lock the structure row
	var structure models.FeeStructure
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Components").
		First(&structure, structureID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "fee structure"}
		}
		return nil, errors.New("failed to load fee structure")
	}

	if !structure.IsActive {
		tx.Rollback()
		return nil, &ConflictError{Message: "fee structure is archived"}
	}

	// Check the student exists
	var student models.Student
	if err := tx.First(&student, dto.StudentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "student"}
		}
		return nil, errors.New("failed to load student")
	}

	// One account per student per structure
	var existing models.StudentFee
	if err := tx.Where("student_id = ? AND fee_structure_id = ?", dto.StudentID, structureID).
		First(&existing).Error; err == nil {
		tx.Rollback()
		return nil, &ConflictError{Message: "student is already assigned to this fee structure"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, errors.New("failed to check existing assignment")
	}

	// Compute setup-time adjustments against the structure total
	total := structure.TotalAmount()
	amounts, err := ApplyAdjustments(total, dto.Adjustments)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var discountTotal, scholarshipTotal float64
	for i, req := range dto.Adjustments {
		if req.Kind == models.AdjustmentKindDiscount {
			discountTotal += amounts[i]
		} else {
			scholarshipTotal += amounts[i]
		}
	}

	// Create the account with derived fields computed
	account := &models.StudentFee{
		StudentID:         student.ID,
		FeeStructureID:    structure.ID,
		TotalAmount:       total,
		DiscountAmount:    discountTotal,
		ScholarshipAmount: scholarshipTotal,
		DueDate:           dto.DueDate,
	}
	account.Recompute(0)

	if err := tx.Create(account).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to create student fee account")
	}

	// Persist the setup-time adjustment rows
	for i, req := range dto.Adjustments {
		adjustment := &models.FeeAdjustment{
			StudentFeeID:   account.ID,
			Kind:           req.Kind,
			Name:           req.Name,
			DiscountType:   req.Type,
			DiscountValue:  req.Value,
			DiscountAmount: amounts[i],
			Reason:         req.Reason,
		}
		if err := tx.Create(adjustment).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("failed to save adjustment")
		}
	}

	// First assignment locks the structure against edits
	if !structure.IsLocked {
		structure.IsLocked = true
		structure.UpdatedAt = time.Now()
		if err := tx.Save(&structure).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("failed to lock fee structure")
		}
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}

	account.Student = student
	return account, nil
}
