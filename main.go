package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"schoolpay/config"
	"schoolpay/controllers"
	"schoolpay/database"
	"schoolpay/middleware"
	"schoolpay/services"

	"github.com/gorilla/mux"
)

// healthHandler reports service liveness
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func initReminderScheduler(db *database.Database, cfg *config.Config, emailService *services.EmailService) {
	interval := time.Duration(cfg.Scheduler.ReminderIntervalHours) * time.Hour

	scheduler := services.NewReminderSchedulerService(db.DB, emailService, interval)
	scheduler.Start()
	log.Println("Due reminder scheduler started")
}

func main() {
	// Load the configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to the database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize the email service
	emailService := services.NewEmailService(cfg)

	// Start the due reminder scheduler
	initReminderScheduler(db, cfg, emailService)

	// Create the router
	router := mux.NewRouter()
	router.Use(middleware.CORSMiddleware)
	router.HandleFunc("/healthz", healthHandler).Methods("GET")

	// Initialize the controllers
	authController := controllers.NewAuthController(db, cfg)
	studentController := controllers.NewStudentController(db)
	structureController := controllers.NewFeeStructureController(db)
	paymentController := controllers.NewPaymentController(db, cfg, emailService)

	// Public authentication routes
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Protected routes
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.RecoveryMiddleware)
	protected.Use(middleware.RateLimitMiddleware)
	protected.Use(middleware.LoggingMiddleware)

	// Student routes
	protected.HandleFunc("/students", studentController.CreateStudent).Methods("POST")
	protected.HandleFunc("/students/{id}/accounts", studentController.GetStudentAccounts).Methods("GET")

	// Fee structure routes
	protected.HandleFunc("/fees/structures", structureController.CreateStructure).Methods("POST")
	protected.HandleFunc("/fees/structures/{id}", structureController.GetStructure).Methods("GET")
	protected.HandleFunc("/fees/structures/{id}/components", structureController.AddComponent).Methods("POST")
	protected.HandleFunc("/fees/components/{componentId}", structureController.UpdateComponent).Methods("PUT")
	protected.HandleFunc("/fees/structures/{id}/archive", structureController.ArchiveStructure).Methods("POST")
	protected.HandleFunc("/fees/structures/{id}/assign", structureController.AssignStudent).Methods("POST")

	// Fee account and payment routes
	protected.HandleFunc("/fees/accounts/{id}/adjustments", paymentController.ApplyAdjustments).Methods("POST")
	protected.HandleFunc("/fees/accounts/{id}/payments", paymentController.CollectPayment).Methods("POST")
	protected.HandleFunc("/fees/accounts/{id}/ledger", paymentController.GetLedger).Methods("GET")
	protected.HandleFunc("/payments/{id}/void", paymentController.VoidPayment).Methods("POST")
	protected.HandleFunc("/receipts/{number}/verify", paymentController.VerifyReceipt).Methods("GET")
	protected.HandleFunc("/metrics", paymentController.GetMetrics).Methods("GET")

	// Start the server
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
