package routes

import (
	"nutrimind_server/controllers"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

// RegisterImageRoutes sets up routes for meal images under /api/images
func RegisterImageRoutes(r *mux.Router, images *services.ImageService) {
	controller := controllers.NewImageController(images)

	imageRouter := r.PathPrefix("/api/images").Subrouter()
	imageRouter.HandleFunc("/meal", controller.GetMealImage).Methods("GET")
	imageRouter.HandleFunc("/stats", controller.GetStats).Methods("GET")
	imageRouter.HandleFunc("/cache", controller.ClearCache).Methods("DELETE")
}
