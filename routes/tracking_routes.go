package routes

import (
	"nutrimind_server/controllers"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

// RegisterTrackingRoutes sets up routes for daily logs under /api/tracking
func RegisterTrackingRoutes(r *mux.Router, tracking *services.TrackingService) {
	controller := controllers.NewTrackingController(tracking)

	trackingRouter := r.PathPrefix("/api/tracking").Subrouter()
	trackingRouter.HandleFunc("/{userId}/water", controller.UpsertWater).Methods("POST")
	trackingRouter.HandleFunc("/{userId}/water/{date}", controller.GetWater).Methods("GET")
	trackingRouter.HandleFunc("/{userId}/measurements", controller.UpsertMeasurement).Methods("POST")
	trackingRouter.HandleFunc("/{userId}/measurements", controller.GetMeasurements).Methods("GET")
	trackingRouter.HandleFunc("/{userId}/activities", controller.AddActivity).Methods("POST")
	trackingRouter.HandleFunc("/{userId}/activities", controller.GetActivities).Methods("GET")
	trackingRouter.HandleFunc("/{userId}/activities/{activityId}", controller.UpdateActivity).Methods("PUT")
	trackingRouter.HandleFunc("/{userId}/activities/{activityId}", controller.DeleteActivity).Methods("DELETE")
	trackingRouter.HandleFunc("/{userId}/meals/completed", controller.SetMealCompleted).Methods("POST")
	trackingRouter.HandleFunc("/{userId}/meals/completed/{date}", controller.GetCompletedMeals).Methods("GET")
}
