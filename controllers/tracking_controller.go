package controllers

import (
	"encoding/json"
	"net/http"

	"nutrimind_server/models"
	"nutrimind_server/services"
	"nutrimind_server/utils"

	"github.com/gorilla/mux"
)

// TrackingController handles daily logs: water, measurements, activities
// and completed meals
type TrackingController struct {
	Tracking *services.TrackingService
}

// NewTrackingController creates a new instance of TrackingController
func NewTrackingController(tracking *services.TrackingService) *TrackingController {
	return &TrackingController{Tracking: tracking}
}

// UpsertWater stores the water intake for a date
func (c *TrackingController) UpsertWater(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var entry models.WaterIntake
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Tracking.UpsertWater(userID, entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Water intake saved"})
}

// GetWater returns the water record for a date
func (c *TrackingController) GetWater(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	date := utils.DateKey(mux.Vars(r)["date"])
	if !date.Valid() {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(c.Tracking.WaterForDate(userID, date))
}

// UpsertMeasurement stores the body measurements for a date
func (c *TrackingController) UpsertMeasurement(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var entry models.BodyMeasurement
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Tracking.UpsertMeasurement(userID, entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Measurement saved"})
}

// GetMeasurements returns all body measurements
func (c *TrackingController) GetMeasurements(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	json.NewEncoder(w).Encode(c.Tracking.Measurements(userID))
}

// AddActivity logs a new exercise session
func (c *TrackingController) AddActivity(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var activity models.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := c.Tracking.AddActivity(userID, activity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(created)
}

// UpdateActivity edits an existing activity
func (c *TrackingController) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var activity models.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	activity.ID = mux.Vars(r)["activityId"]

	if err := c.Tracking.UpdateActivity(userID, activity); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Activity updated"})
}

// DeleteActivity removes an activity
func (c *TrackingController) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	activityID := mux.Vars(r)["activityId"]

	if err := c.Tracking.DeleteActivity(userID, activityID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Activity deleted"})
}

// GetActivities lists activities, optionally filtered by ?date=
func (c *TrackingController) GetActivities(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	date := utils.DateKey(r.URL.Query().Get("date"))
	json.NewEncoder(w).Encode(c.Tracking.Activities(userID, date))
}

// SetMealCompleted toggles a meal's consumed flag for a date
func (c *TrackingController) SetMealCompleted(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var payload struct {
		Date      string `json:"date"`
		MealName  string `json:"mealName"`
		Completed bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := c.Tracking.SetMealCompleted(userID, utils.DateKey(payload.Date), payload.MealName, payload.Completed); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Meal completion saved"})
}

// GetCompletedMeals returns the meals consumed on a date
func (c *TrackingController) GetCompletedMeals(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	date := utils.DateKey(mux.Vars(r)["date"])
	if !date.Valid() {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}
	meals := c.Tracking.CompletedMeals(userID, date)
	if meals == nil {
		meals = []string{}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"meals": meals})
}
