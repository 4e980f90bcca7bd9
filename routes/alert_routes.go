package routes

import (
	"nutrimind_server/controllers"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

// RegisterAlertRoutes sets up routes for nutritional alerts under /api/alerts
func RegisterAlertRoutes(r *mux.Router, alerts *services.AlertService) {
	controller := controllers.NewAlertController(alerts)

	alertRouter := r.PathPrefix("/api/alerts").Subrouter()
	alertRouter.HandleFunc("/{userId}/generate", controller.GenerateAlerts).Methods("POST")
	alertRouter.HandleFunc("/{userId}", controller.ListAlerts).Methods("GET")
	alertRouter.HandleFunc("/{userId}/{alertId}/read", controller.MarkRead).Methods("POST")
	alertRouter.HandleFunc("/{userId}/{alertId}", controller.Dismiss).Methods("DELETE")
}
