package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

// SyncController handles remote state load and manual sync
type SyncController struct {
	Sync *services.SyncService
}

// NewSyncController creates a new instance of SyncController
func NewSyncController(sync *services.SyncService) *SyncController {
	return &SyncController{Sync: sync}
}

// Load pulls the user's remote snapshot into the session. Responds with
// needsOnboarding=true when no remote data exists yet.
func (c *SyncController) Load(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	found, err := c.Sync.Load(r.Context(), userID)
	if err != nil {
		log.Printf("❌ Load failed for user %s: %v", userID, err)
		http.Error(w, "Failed to load user data", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"needsOnboarding": !found,
	})
}

// ForceSync pushes the current state immediately
func (c *SyncController) ForceSync(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	if err := c.Sync.ForceSync(userID); err != nil {
		http.Error(w, "Sync failed", http.StatusBadGateway)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Sync completed",
		"status":  c.Sync.Status(userID),
	})
}

// GetStatus returns the user's current sync status
func (c *SyncController) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	json.NewEncoder(w).Encode(c.Sync.Status(userID))
}
