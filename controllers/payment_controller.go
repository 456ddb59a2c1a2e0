package controllers

import (
	"encoding/json"
	"net/http"

	"schoolpay/config"
	"schoolpay/database"
	"schoolpay/middleware"
	"schoolpay/services"
	"schoolpay/utils"

	"github.com/gorilla/mux"
)

// PaymentController handles payment collection and ledger requests
type PaymentController struct {
	paymentService    *services.PaymentService
	accountService    *services.FeeAccountService
	adjustmentService *services.AdjustmentService
	config            *config.Config
}

// NewPaymentController creates a new PaymentController instance
func NewPaymentController(db *database.Database, cfg *config.Config, email *services.EmailService) *PaymentController {
	issuer := services.NewSequenceReceiptIssuer(cfg.Receipt.Prefix, cfg.Receipt.HMACKey)
	return &PaymentController{
		paymentService:    services.NewPaymentService(db.DB, issuer, email),
		accountService:    services.NewFeeAccountService(db.DB),
		adjustmentService: services.NewAdjustmentService(db.DB),
		config:            cfg,
	}
}

// CollectPayment handles a payment collection request
func (c *PaymentController) CollectPayment(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	var dto services.CollectPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.StudentFeeID = accountID
	dto.CollectedByID = userID

	response, err := c.paymentService.Collect(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// GetLedger handles fetching the fee ledger for an account
func (c *PaymentController) GetLedger(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	ledger, err := c.accountService.GetLedger(accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ledger)
}

// ApplyAdjustments handles attaching discounts or scholarships to an account
func (c *PaymentController) ApplyAdjustments(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	var requests []services.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&requests); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := c.adjustmentService.Apply(accountID, requests)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
}

// VoidPaymentRequest represents a payment void request body
type VoidPaymentRequest struct {
	Reason string `json:"reason"`
}

// VoidPayment handles reversing an erroneous payment
func (c *PaymentController) VoidPayment(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	paymentID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid payment ID", http.StatusBadRequest)
		return
	}

	var req VoidPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := c.paymentService.Void(paymentID, req.Reason, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
}

// VerifyReceipt handles receipt number verification
func (c *PaymentController) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	receiptNumber := vars["number"]

	valid := services.VerifyReceiptNumber(receiptNumber, c.config.Receipt.HMACKey)

	result := map[string]interface{}{
		"receipt_number": receiptNumber,
		"valid":          valid,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// GetMetrics handles fetching the operational metrics snapshot
func (c *PaymentController) GetMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(utils.GetMetrics().GetMetricsSnapshot())
}
