package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"nutrimind_server/models"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

// AlertController handles nutritional alert requests
type AlertController struct {
	Alerts *services.AlertService
}

// NewAlertController creates a new instance of AlertController
func NewAlertController(alerts *services.AlertService) *AlertController {
	return &AlertController{Alerts: alerts}
}

// GenerateAlerts runs the daily rule engine and returns new alerts
func (c *AlertController) GenerateAlerts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	language := r.URL.Query().Get("language")

	created, err := c.Alerts.GenerateDailyAlerts(userID, language, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if created == nil {
		created = []models.NutritionalAlert{}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"alerts": created})
}

// ListAlerts returns the user's alerts, ?unread=true for unread only
func (c *AlertController) ListAlerts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	unreadOnly := r.URL.Query().Get("unread") == "true"

	alerts := c.Alerts.List(userID, unreadOnly)
	if alerts == nil {
		alerts = []models.NutritionalAlert{}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"alerts": alerts})
}

// MarkRead flags one alert as read
func (c *AlertController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	alertID := mux.Vars(r)["alertId"]

	if err := c.Alerts.MarkRead(userID, alertID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Alert marked as read"})
}

// Dismiss removes one alert
func (c *AlertController) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	alertID := mux.Vars(r)["alertId"]

	if err := c.Alerts.Dismiss(userID, alertID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Alert dismissed"})
}
