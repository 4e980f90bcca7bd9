package routes

import (
	"nutrimind_server/controllers"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for profile operations under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, profileService *services.UserProfileService) {
	controller := controllers.NewUserProfileController(profileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()
	profileRouter.HandleFunc("/{userId}/onboarding", controller.CompleteOnboarding).Methods("POST")
	profileRouter.HandleFunc("/{userId}", controller.GetProfile).Methods("GET")
	profileRouter.HandleFunc("/{userId}", controller.UpdateProfile).Methods("PUT")
	profileRouter.HandleFunc("/{userId}/weight", controller.RecordWeight).Methods("POST")
	profileRouter.HandleFunc("/{userId}", controller.ResetProfile).Methods("DELETE")
}
