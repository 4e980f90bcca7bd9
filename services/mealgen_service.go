package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"nutrimind_server/models"
)

// JSONGenerator is the structured-output side of the generation backend.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema map[string]any) ([]byte, error)
}

// MealGenService orchestrates plan generation: it builds prompts from the
// user's profile and current plan, calls the generation backend, validates
// the result's shape, recomputes all totals and installs the outcome in
// the user's state. Generated totals are never trusted.
type MealGenService struct {
	Gemini JSONGenerator
	State  *StateService
}

// NewMealGenService creates the orchestrator.
func NewMealGenService(gemini JSONGenerator, state *StateService) *MealGenService {
	return &MealGenService{Gemini: gemini, State: state}
}

func (s *MealGenService) profileAndLanguage(userID, language string) (models.UserProfile, string, error) {
	snapshot := s.State.Snapshot(userID)
	if snapshot == nil || snapshot.Profile == nil {
		return models.UserProfile{}, "", fmt.Errorf("user %s has no profile", userID)
	}
	if language != models.LanguageEnglish {
		language = models.LanguageFrench
	}
	return *snapshot.Profile, language, nil
}

// GenerateWeeklyPlan generates a full 7-day plan for the given week index
// and installs it, replacing any existing plan for that week.
func (s *MealGenService) GenerateWeeklyPlan(ctx context.Context, userID string, weekNumber int, language, customPrompt string) (models.WeeklyPlan, error) {
	profile, language, err := s.profileAndLanguage(userID, language)
	if err != nil {
		return models.WeeklyPlan{}, err
	}

	raw, err := s.Gemini.GenerateJSON(ctx, WeeklyPlanPrompt(profile, language, customPrompt), WeeklyPlanSchema())
	if err != nil {
		return models.WeeklyPlan{}, err
	}

	var payload struct {
		Plan []models.DailyPlan `json:"plan"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.WeeklyPlan{}, &StructureError{Reason: fmt.Sprintf("weekly plan payload: %v", err)}
	}
	if len(payload.Plan) != 7 {
		return models.WeeklyPlan{}, &StructureError{Reason: fmt.Sprintf("expected 7 days, got %d", len(payload.Plan))}
	}

	plan := models.WeeklyPlan{WeekNumber: weekNumber, Plan: payload.Plan}
	for i := range plan.Plan {
		RecomputeDayTotals(&plan.Plan[i])
	}

	err = s.State.Update(userID, func(data *models.UserData) error {
		data.MealPlans = UpsertWeek(data.MealPlans, plan)
		return nil
	})
	if err != nil {
		return models.WeeklyPlan{}, err
	}

	log.Printf("✅ Generated weekly plan %d for user %s", weekNumber, userID)
	return plan, nil
}

// RegenerateDay regenerates one full day of an existing weekly plan.
func (s *MealGenService) RegenerateDay(ctx context.Context, userID string, weekNumber, dayIndex int, language string, opts RegenerationOptions) (models.DailyPlan, error) {
	profile, language, err := s.profileAndLanguage(userID, language)
	if err != nil {
		return models.DailyPlan{}, err
	}

	dayOfWeek, err := s.dayOfWeek(userID, weekNumber, dayIndex)
	if err != nil {
		return models.DailyPlan{}, err
	}

	raw, err := s.Gemini.GenerateJSON(ctx, RegenerateDayPrompt(profile, language, dayOfWeek, opts), DailyPlanSchema())
	if err != nil {
		return models.DailyPlan{}, err
	}

	var day models.DailyPlan
	if err := json.Unmarshal(raw, &day); err != nil {
		return models.DailyPlan{}, &StructureError{Reason: fmt.Sprintf("daily plan payload: %v", err)}
	}
	if len(day.Meals) == 0 {
		return models.DailyPlan{}, &StructureError{Reason: "regenerated day has no meals"}
	}
	day.DayOfWeek = dayOfWeek
	RecomputeDayTotals(&day)

	err = s.State.Update(userID, func(data *models.UserData) error {
		week := FindWeek(data.MealPlans, weekNumber)
		if week == nil || dayIndex < 0 || dayIndex >= len(week.Plan) {
			return fmt.Errorf("week %d day %d not found", weekNumber, dayIndex)
		}
		week.Plan[dayIndex] = day
		return nil
	})
	if err != nil {
		return models.DailyPlan{}, err
	}
	return day, nil
}

// ReplaceMealInPlan generates a replacement for one meal, sized to the
// residual calories left by the other meals of the day.
func (s *MealGenService) ReplaceMealInPlan(ctx context.Context, userID string, weekNumber, dayIndex, mealIndex int, language string, opts RegenerationOptions) (models.Meal, error) {
	profile, language, err := s.profileAndLanguage(userID, language)
	if err != nil {
		return models.Meal{}, err
	}

	day, err := s.dayAt(userID, weekNumber, dayIndex)
	if err != nil {
		return models.Meal{}, err
	}
	if mealIndex < 0 || mealIndex >= len(day.Meals) {
		return models.Meal{}, fmt.Errorf("meal index %d out of range for day with %d meals", mealIndex, len(day.Meals))
	}

	raw, err := s.Gemini.GenerateJSON(ctx, ReplaceMealPrompt(profile, language, day, mealIndex, opts), MealSchema())
	if err != nil {
		return models.Meal{}, err
	}

	meal, err := decodeMeal(raw)
	if err != nil {
		return models.Meal{}, err
	}

	err = s.State.Update(userID, func(data *models.UserData) error {
		week := FindWeek(data.MealPlans, weekNumber)
		if week == nil || dayIndex < 0 || dayIndex >= len(week.Plan) {
			return fmt.Errorf("week %d day %d not found", weekNumber, dayIndex)
		}
		target := &week.Plan[dayIndex]
		if mealIndex >= len(target.Meals) {
			return fmt.Errorf("meal index %d out of range", mealIndex)
		}
		ReplaceMeal(target, mealIndex, meal)
		return nil
	})
	if err != nil {
		return models.Meal{}, err
	}
	return meal, nil
}

// AddGeneratedMeal generates one extra meal for a day and appends it.
func (s *MealGenService) AddGeneratedMeal(ctx context.Context, userID string, weekNumber, dayIndex int, language string, opts RegenerationOptions) (models.Meal, error) {
	profile, language, err := s.profileAndLanguage(userID, language)
	if err != nil {
		return models.Meal{}, err
	}

	day, err := s.dayAt(userID, weekNumber, dayIndex)
	if err != nil {
		return models.Meal{}, err
	}

	raw, err := s.Gemini.GenerateJSON(ctx, AddMealPrompt(profile, language, day, opts), MealSchema())
	if err != nil {
		return models.Meal{}, err
	}

	meal, err := decodeMeal(raw)
	if err != nil {
		return models.Meal{}, err
	}

	err = s.State.Update(userID, func(data *models.UserData) error {
		week := FindWeek(data.MealPlans, weekNumber)
		if week == nil || dayIndex < 0 || dayIndex >= len(week.Plan) {
			return fmt.Errorf("week %d day %d not found", weekNumber, dayIndex)
		}
		AddMeal(&week.Plan[dayIndex], meal)
		return nil
	})
	if err != nil {
		return models.Meal{}, err
	}
	return meal, nil
}

// CompleteDay generates meals to fill the remaining calorie deficit of a
// day. When the day is already at or over target it returns an empty list
// without calling the backend.
func (s *MealGenService) CompleteDay(ctx context.Context, userID string, weekNumber, dayIndex int, language string, opts RegenerationOptions) ([]models.Meal, error) {
	profile, language, err := s.profileAndLanguage(userID, language)
	if err != nil {
		return nil, err
	}

	day, err := s.dayAt(userID, weekNumber, dayIndex)
	if err != nil {
		return nil, err
	}

	deficit := ResidualCalories(day, profile.TargetCalories)
	if deficit <= 0 {
		return []models.Meal{}, nil
	}

	raw, err := s.Gemini.GenerateJSON(ctx, CompleteDayPrompt(profile, language, day, deficit, opts), MultipleMealsSchema())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Meals []models.Meal `json:"meals"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &StructureError{Reason: fmt.Sprintf("meal batch payload: %v", err)}
	}
	if len(payload.Meals) == 0 {
		return nil, &StructureError{Reason: "empty meal batch"}
	}

	err = s.State.Update(userID, func(data *models.UserData) error {
		week := FindWeek(data.MealPlans, weekNumber)
		if week == nil || dayIndex < 0 || dayIndex >= len(week.Plan) {
			return fmt.Errorf("week %d day %d not found", weekNumber, dayIndex)
		}
		for _, meal := range payload.Meals {
			AddMeal(&week.Plan[dayIndex], meal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload.Meals, nil
}

// ShoppingList consolidates a week's ingredients into a categorized list.
// An empty week yields nil without calling the backend, and a backend
// outage falls back to the deterministic consolidator.
func (s *MealGenService) ShoppingList(ctx context.Context, userID string, weekNumber int, language string) ([]models.ShoppingCategory, error) {
	_, language, err := s.profileAndLanguage(userID, language)
	if err != nil {
		return nil, err
	}

	snapshot := s.State.Snapshot(userID)
	week := FindWeek(snapshot.MealPlans, weekNumber)
	if week == nil {
		return nil, fmt.Errorf("no plan for week %d", weekNumber)
	}

	var ingredients []string
	for _, day := range week.Plan {
		for _, meal := range day.Meals {
			ingredients = append(ingredients, meal.Ingredients...)
		}
	}
	if len(ingredients) == 0 {
		return nil, nil
	}

	raw, err := s.Gemini.GenerateJSON(ctx, ShoppingListPrompt(ingredients, language), ShoppingListSchema())
	if err != nil {
		log.Printf("⚠️ Shopping list generation failed (%v), using local consolidation", err)
		return ConsolidateIngredients(ingredients, language), nil
	}

	var payload struct {
		ShoppingList []models.ShoppingCategory `json:"shoppingList"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &StructureError{Reason: fmt.Sprintf("shopping list payload: %v", err)}
	}
	return payload.ShoppingList, nil
}

func (s *MealGenService) dayOfWeek(userID string, weekNumber, dayIndex int) (string, error) {
	day, err := s.dayAt(userID, weekNumber, dayIndex)
	if err != nil {
		return "", err
	}
	return day.DayOfWeek, nil
}

func (s *MealGenService) dayAt(userID string, weekNumber, dayIndex int) (models.DailyPlan, error) {
	snapshot := s.State.Snapshot(userID)
	if snapshot == nil {
		return models.DailyPlan{}, fmt.Errorf("no session state for user %s", userID)
	}
	week := FindWeek(snapshot.MealPlans, weekNumber)
	if week == nil {
		return models.DailyPlan{}, fmt.Errorf("no plan for week %d", weekNumber)
	}
	if dayIndex < 0 || dayIndex >= len(week.Plan) {
		return models.DailyPlan{}, fmt.Errorf("day index %d out of range for week with %d days", dayIndex, len(week.Plan))
	}
	return week.Plan[dayIndex], nil
}

func decodeMeal(raw []byte) (models.Meal, error) {
	var meal models.Meal
	if err := json.Unmarshal(raw, &meal); err != nil {
		return models.Meal{}, &StructureError{Reason: fmt.Sprintf("meal payload: %v", err)}
	}
	if meal.Name == "" {
		return models.Meal{}, &StructureError{Reason: "generated meal has no name"}
	}
	return meal, nil
}
