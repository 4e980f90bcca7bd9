package controllers

import (
	"encoding/json"
	"net/http"

	"nutrimind_server/services"
)

// ImageController serves cached meal images
type ImageController struct {
	Images *services.ImageService
}

// NewImageController creates a new instance of ImageController
func NewImageController(images *services.ImageService) *ImageController {
	return &ImageController{Images: images}
}

// GetMealImage returns a data URL for the requested meal, generating and
// caching it on first request
func (c *ImageController) GetMealImage(w http.ResponseWriter, r *http.Request) {
	mealName := r.URL.Query().Get("meal")
	if mealName == "" {
		http.Error(w, "Missing meal query parameter", http.StatusBadRequest)
		return
	}
	language := r.URL.Query().Get("language")

	image, err := c.Images.GetMealImage(r.Context(), mealName, language)
	// err here means the client gave up or the name was empty; the
	// placeholder in image is still a valid response body
	response := map[string]interface{}{"image": image}
	if err != nil {
		response["fallback"] = true
	}
	json.NewEncoder(w).Encode(response)
}

// GetStats reports cache effectiveness counters
func (c *ImageController) GetStats(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(c.Images.Stats())
}

// ClearCache drops the in-memory image cache tier
func (c *ImageController) ClearCache(w http.ResponseWriter, r *http.Request) {
	c.Images.Clear()
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Image cache cleared"})
}
