package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"schoolpay/database"
	"schoolpay/services"

	"github.com/gorilla/mux"
)

// FeeStructureController handles fee structure requests
type FeeStructureController struct {
	structureService *services.FeeStructureService
}

// NewFeeStructureController creates a new FeeStructureController instance
func NewFeeStructureController(db *database.Database) *FeeStructureController {
	return &FeeStructureController{
		structureService: services.NewFeeStructureService(db.DB),
	}
}

// writeServiceError maps the service error taxonomy onto HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	var notFound *services.NotFoundError
	var conflict *services.ConflictError
	var invalidAmount *services.InvalidAmountError
	var invalidMethod *services.InvalidMethodError
	var missingField *services.MissingFieldError
	var validation *services.ValidationError

	switch {
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &conflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &invalidAmount),
		errors.As(err, &invalidMethod),
		errors.As(err, &missingField),
		errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// pathID reads a numeric path variable
func pathID(r *http.Request, name string) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars[name], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// CreateStructure handles creating a fee structure
func (c *FeeStructureController) CreateStructure(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateFeeStructureDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	structure, err := c.structureService.Create(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(structure)
}

// GetStructure handles fetching a fee structure with its components
func (c *FeeStructureController) GetStructure(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid structure ID", http.StatusBadRequest)
		return
	}

	structure, err := c.structureService.GetByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(structure)
}

// AddComponent handles adding a component to an unlocked structure
func (c *FeeStructureController) AddComponent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid structure ID", http.StatusBadRequest)
		return
	}

	var dto services.FeeComponentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	component, err := c.structureService.AddComponent(id, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(component)
}

// UpdateComponent handles editing a component of an unlocked structure
func (c *FeeStructureController) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "componentId")
	if err != nil {
		http.Error(w, "Invalid component ID", http.StatusBadRequest)
		return
	}

	var dto services.FeeComponentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	component, err := c.structureService.UpdateComponent(id, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(component)
}

// ArchiveStructure handles soft-archiving a structure
func (c *FeeStructureController) ArchiveStructure(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid structure ID", http.StatusBadRequest)
		return
	}

	structure, err := c.structureService.Archive(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(structure)
}

// AssignStudent handles assigning a student to a structure
func (c *FeeStructureController) AssignStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid structure ID", http.StatusBadRequest)
		return
	}

	var dto services.AssignStudentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := c.structureService.AssignStudent(id, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
}
