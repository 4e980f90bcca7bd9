package routes

import (
	"nutrimind_server/controllers"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

// RegisterSyncRoutes sets up routes for state sync under /api/sync
func RegisterSyncRoutes(r *mux.Router, sync *services.SyncService) {
	controller := controllers.NewSyncController(sync)

	syncRouter := r.PathPrefix("/api/sync").Subrouter()
	syncRouter.HandleFunc("/{userId}/load", controller.Load).Methods("POST")
	syncRouter.HandleFunc("/{userId}/force", controller.ForceSync).Methods("POST")
	syncRouter.HandleFunc("/{userId}/status", controller.GetStatus).Methods("GET")
}
