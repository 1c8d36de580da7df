package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"buildhub/handlers"
	"buildhub/middleware"
	"buildhub/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handlers.GetCurrentUser).Methods("GET")

	// Contractor estimate workflow
	contractor := api.PathPrefix("/contractor").Subrouter()
	contractor.Use(func(next http.Handler) http.Handler {
		return middleware.RequireRole([]string{models.RoleContractor}, next)
	})

	contractor.HandleFunc("/get_inbox", handlers.GetInbox).Methods("GET")
	contractor.HandleFunc("/acknowledge_inbox_item", handlers.AcknowledgeInboxItem).Methods("POST")
	contractor.HandleFunc("/delete_inbox_item", handlers.DeleteInboxItem).Methods("POST")

	contractor.HandleFunc("/save_estimate_draft", handlers.GetEstimateDraft).Methods("GET")
	contractor.HandleFunc("/save_estimate_draft", handlers.SaveEstimateDraft).Methods("POST")
	contractor.HandleFunc("/save_estimate_draft", handlers.ClearEstimateDraft).Methods("DELETE")

	contractor.HandleFunc("/submit_estimate_for_send", handlers.SubmitEstimateForSend).Methods("POST")
	contractor.HandleFunc("/get_my_estimates", handlers.GetMyEstimates).Methods("GET")
	contractor.HandleFunc("/delete_estimate", handlers.DeleteEstimate).Methods("POST")
	contractor.HandleFunc("/estimates/{id:[0-9]+}/export", handlers.ExportEstimateWorkbook).Methods("GET")

	return r
}
