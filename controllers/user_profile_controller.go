package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"nutrimind_server/models"
	"nutrimind_server/services"
	"nutrimind_server/utils"

	"github.com/gorilla/mux"
)

// UserProfileController handles onboarding and profile requests
type UserProfileController struct {
	ProfileService *services.UserProfileService
}

// NewUserProfileController creates a new instance of UserProfileController
func NewUserProfileController(profileService *services.UserProfileService) *UserProfileController {
	return &UserProfileController{ProfileService: profileService}
}

// CompleteOnboarding creates a user's initial profile and state
func (c *UserProfileController) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := c.ProfileService.CompleteOnboarding(userID, profile)
	if err != nil {
		log.Printf("❌ Onboarding failed for user %s: %v", userID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Onboarding completed successfully",
		"profile": created,
	})
}

// GetProfile returns the user's profile
func (c *UserProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	profile := c.ProfileService.GetProfile(userID)
	if profile == nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(profile)
}

// UpdateProfile replaces the profile, recomputing metabolic targets
func (c *UserProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := c.ProfileService.UpdateProfile(userID, profile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": updated,
	})
}

// RecordWeight logs a weight measurement for a date
func (c *UserProfileController) RecordWeight(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var payload struct {
		Date   string  `json:"date"`
		Weight float64 `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Date == "" {
		payload.Date = string(utils.TodayKey())
	}

	if err := c.ProfileService.RecordWeight(userID, utils.DateKey(payload.Date), payload.Weight); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Weight recorded successfully",
	})
}

// ResetProfile wipes all of the user's data, locally and remotely
func (c *UserProfileController) ResetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	if err := c.ProfileService.ResetProfile(userID); err != nil {
		log.Printf("❌ Reset failed for user %s: %v", userID, err)
		http.Error(w, "Failed to reset profile", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile reset successfully",
	})
}
