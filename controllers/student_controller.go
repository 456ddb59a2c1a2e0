package controllers

import (
	"encoding/json"
	"net/http"

	"schoolpay/database"
	"schoolpay/models"
	"schoolpay/services"

	"github.com/go-playground/validator/v10"
)

// StudentController handles student record requests
type StudentController struct {
	db             *database.Database
	accountService *services.FeeAccountService
	validate       *validator.Validate
}

// CreateStudentRequest represents a student registration request
type CreateStudentRequest struct {
	FirstName       string `json:"first_name" validate:"required,min=1,max=50"`
	LastName        string `json:"last_name" validate:"required,min=1,max=50"`
	AdmissionNumber string `json:"admission_number" validate:"required,min=1,max=30"`
	ClassName       string `json:"class_name" validate:"max=50"`
	GuardianName    string `json:"guardian_name" validate:"max=100"`
	GuardianEmail   string `json:"guardian_email" validate:"omitempty,email"`
}

// NewStudentController creates a new StudentController instance
func NewStudentController(db *database.Database) *StudentController {
	return &StudentController{
		db:             db,
		accountService: services.NewFeeAccountService(db.DB),
		validate:       validator.New(),
	}
}

// CreateStudent handles registering a student
func (c *StudentController) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	student := &models.Student{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		AdmissionNumber: req.AdmissionNumber,
		ClassName:       req.ClassName,
		GuardianName:    req.GuardianName,
		GuardianEmail:   req.GuardianEmail,
	}

	if err := c.db.CreateStudent(student); err != nil {
		http.Error(w, "Failed to create student", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(student)
}

// GetStudentAccounts handles listing a student's fee accounts
func (c *StudentController) GetStudentAccounts(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	accounts, err := c.accountService.GetAccountsByStudentID(studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
}
