package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"nutrimind_server/models"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
)

var errNotFound = errors.New("not found")

// PlanController handles meal plan generation and editing
type PlanController struct {
	MealGen *services.MealGenService
	State   *services.StateService
	Images  *services.ImageService
}

// NewPlanController creates a new instance of PlanController
func NewPlanController(mealGen *services.MealGenService, state *services.StateService, images *services.ImageService) *PlanController {
	return &PlanController{MealGen: mealGen, State: state, Images: images}
}

func pathInt(r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// writeGenError maps generation failures onto HTTP statuses
func writeGenError(w http.ResponseWriter, err error) {
	var structErr *services.StructureError
	switch {
	case errors.Is(err, services.ErrGenerationUnavailable):
		http.Error(w, "Generation service unavailable, try again later", http.StatusServiceUnavailable)
	case errors.As(err, &structErr):
		http.Error(w, "Generation returned an unusable result, try again", http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// GetPlans returns all of the user's weekly plans
func (c *PlanController) GetPlans(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	snapshot := c.State.Snapshot(userID)
	if snapshot == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(snapshot.MealPlans)
}

// GenerateWeek generates a full weekly plan
func (c *PlanController) GenerateWeek(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	week, ok := pathInt(r, "week")
	if !ok {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}

	var payload struct {
		Language string `json:"language"`
		Prompt   string `json:"prompt"`
	}
	json.NewDecoder(r.Body).Decode(&payload)

	plan, err := c.MealGen.GenerateWeeklyPlan(r.Context(), userID, week, payload.Language, payload.Prompt)
	if err != nil {
		log.Printf("❌ Weekly plan generation failed for user %s: %v", userID, err)
		writeGenError(w, err)
		return
	}

	// preload images for the fresh plan behind the normal throttle
	c.Images.Warm(plan, payload.Language)

	json.NewEncoder(w).Encode(plan)
}

// GetDayStatus classifies one day's calorie total against the user's target
func (c *PlanController) GetDayStatus(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	week, okW := pathInt(r, "week")
	day, okD := pathInt(r, "day")
	if !okW || !okD {
		http.Error(w, "Invalid week or day index", http.StatusBadRequest)
		return
	}

	snapshot := c.State.Snapshot(userID)
	if snapshot == nil || snapshot.Profile == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	weekPlan := services.FindWeek(snapshot.MealPlans, week)
	if weekPlan == nil || day >= len(weekPlan.Plan) {
		http.Error(w, "No plan for this period", http.StatusNotFound)
		return
	}

	dayPlan := weekPlan.Plan[day]
	target := snapshot.Profile.TargetCalories
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":           services.DayStatus(dayPlan.DailyTotals.Calories, target),
		"dailyTotals":      dayPlan.DailyTotals,
		"caloriePercent":   services.MacroPercent(dayPlan.DailyTotals.Calories, target),
		"residualCalories": services.ResidualCalories(dayPlan, target),
		"isPerfectDay":     services.IsPerfectDay(dayPlan.DailyTotals.Calories, target),
	})
}

type regenPayload struct {
	Language string  `json:"language"`
	Prompt   string  `json:"prompt"`
	Budget   float64 `json:"budget"`
	Cooking  string  `json:"cookingLevel"`
	PrepTime int     `json:"maxPrepTime"`
	MealsN   int     `json:"mealsToAdd"`
}

func (p regenPayload) options() services.RegenerationOptions {
	return services.RegenerationOptions{
		Prompt:       p.Prompt,
		Budget:       p.Budget,
		CookingLevel: p.Cooking,
		MaxPrepTime:  p.PrepTime,
		MealsToAdd:   p.MealsN,
	}
}

// RegenerateDay regenerates one day of a weekly plan
func (c *PlanController) RegenerateDay(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	week, okW := pathInt(r, "week")
	day, okD := pathInt(r, "day")
	if !okW || !okD {
		http.Error(w, "Invalid week or day index", http.StatusBadRequest)
		return
	}

	var payload regenPayload
	json.NewDecoder(r.Body).Decode(&payload)

	regenerated, err := c.MealGen.RegenerateDay(r.Context(), userID, week, day, payload.Language, payload.options())
	if err != nil {
		writeGenError(w, err)
		return
	}
	json.NewEncoder(w).Encode(regenerated)
}

// ReplaceMeal generates a replacement for one meal
func (c *PlanController) ReplaceMeal(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	week, okW := pathInt(r, "week")
	day, okD := pathInt(r, "day")
	meal, okM := pathInt(r, "meal")
	if !okW || !okD || !okM {
		http.Error(w, "Invalid week, day or meal index", http.StatusBadRequest)
		return
	}

	var payload regenPayload
	json.NewDecoder(r.Body).Decode(&payload)

	replacement, err := c.MealGen.ReplaceMealInPlan(r.Context(), userID, week, day, meal, payload.Language, payload.options())
	if err != nil {
		writeGenError(w, err)
		return
	}
	json.NewEncoder(w).Encode(replacement)
}

// AddMeal generates and appends one extra meal to a day
func (c *PlanController) AddMeal(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	week, okW := pathInt(r, "week")
	day, okD := pathInt(r, "day")
	if !okW || !okD {
		http.Error(w, "Invalid week or day index", http.StatusBadRequest)
		return
	}

	var payload regenPayload
	json.NewDecoder(r.Body).Decode(&payload)

	meal, err := c.MealGen.AddGeneratedMeal(r.Context(), userID, week, day, payload.Language, payload.options())
	if err != nil {
		writeGenError(w, err)
		return
	}
	json.NewEncoder(w).Encode(meal)
}

// CompleteDay fills the remaining calorie deficit of a day
func (c *PlanController) CompleteDay(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	week, okW := pathInt(r, "week")
	day, okD := pathInt(r, "day")
	if !okW || !okD {
		http.Error(w, "Invalid week or day index", http.StatusBadRequest)
		return
	}

	var payload regenPayload
	json.NewDecoder(r.Body).Decode(&payload)

	meals, err := c.MealGen.CompleteDay(r.Context(), userID, week, day, payload.Language, payload.options())
	if err != nil {
		writeGenError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"meals": meals,
	})
}

// RemoveMeal deletes one meal from a day
func (c *PlanController) RemoveMeal(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	week, okW := pathInt(r, "week")
	day, okD := pathInt(r, "day")
	mealIndex, okM := pathInt(r, "meal")
	if !okW || !okD || !okM {
		http.Error(w, "Invalid week, day or meal index", http.StatusBadRequest)
		return
	}

	err := c.State.Update(userID, func(data *models.UserData) error {
		weekPlan := services.FindWeek(data.MealPlans, week)
		if weekPlan == nil || day >= len(weekPlan.Plan) {
			return errNotFound
		}
		target := &weekPlan.Plan[day]
		if mealIndex >= len(target.Meals) {
			return errNotFound
		}
		services.RemoveMeal(target, mealIndex)
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, "Meal not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Meal removed successfully",
	})
}

// ShoppingList returns the consolidated list for one week
func (c *PlanController) ShoppingList(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	week, ok := pathInt(r, "week")
	if !ok {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}
	language := r.URL.Query().Get("language")

	list, err := c.MealGen.ShoppingList(r.Context(), userID, week, language)
	if err != nil {
		writeGenError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"shoppingList": list,
	})
}
