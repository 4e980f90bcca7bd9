package routes

import (
	"nutrimind_server/controllers"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

// RegisterPlanRoutes sets up routes for meal plan operations under /api/plans
func RegisterPlanRoutes(r *mux.Router, mealGen *services.MealGenService, state *services.StateService, images *services.ImageService) {
	controller := controllers.NewPlanController(mealGen, state, images)

	planRouter := r.PathPrefix("/api/plans").Subrouter()
	planRouter.HandleFunc("/{userId}", controller.GetPlans).Methods("GET")
	planRouter.HandleFunc("/{userId}/weeks/{week}/generate", controller.GenerateWeek).Methods("POST")
	planRouter.HandleFunc("/{userId}/weeks/{week}/days/{day}/status", controller.GetDayStatus).Methods("GET")
	planRouter.HandleFunc("/{userId}/weeks/{week}/days/{day}/regenerate", controller.RegenerateDay).Methods("POST")
	planRouter.HandleFunc("/{userId}/weeks/{week}/days/{day}/meals", controller.AddMeal).Methods("POST")
	planRouter.HandleFunc("/{userId}/weeks/{week}/days/{day}/meals/{meal}/replace", controller.ReplaceMeal).Methods("POST")
	planRouter.HandleFunc("/{userId}/weeks/{week}/days/{day}/meals/{meal}", controller.RemoveMeal).Methods("DELETE")
	planRouter.HandleFunc("/{userId}/weeks/{week}/days/{day}/complete", controller.CompleteDay).Methods("POST")
	planRouter.HandleFunc("/{userId}/weeks/{week}/shopping-list", controller.ShoppingList).Methods("GET")
}
