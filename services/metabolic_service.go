package services

import (
	"math"

	"nutrimind_server/models"
)

// ActivityMultipliers maps activity level to its TDEE multiplier. This is
// the single source of truth for valid activity levels.
var ActivityMultipliers = map[string]float64{
	models.ActivitySedentary:  1.2,
	models.ActivityLight:      1.375,
	models.ActivityModerate:   1.55,
	models.ActivityActive:     1.725,
	models.ActivityVeryActive: 1.9,
}

// Calorie offsets applied to TDEE per goal direction.
const (
	loseCalorieDeficit = 500
	gainCalorieSurplus = 300
)

// Fixed 30/40/30 macro split (product decision, not user-configurable).
const (
	proteinCalorieShare = 0.30
	carbCalorieShare    = 0.40
	fatCalorieShare     = 0.30

	caloriesPerGramProtein = 4
	caloriesPerGramCarb    = 4
	caloriesPerGramFat     = 9
)

// Metabolism holds the derived metabolic values for a profile.
type Metabolism struct {
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories float64 `json:"targetCalories"`
}

// CalculateMetabolism computes BMR (Mifflin-St Jeor), TDEE and the daily
// calorie target. Pure and deterministic; callers must reject non-positive
// height/weight before calling.
func CalculateMetabolism(gender string, age int, heightCm, weightKg float64, activityLevel, goal string) Metabolism {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == models.GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	multiplier, ok := ActivityMultipliers[activityLevel]
	if !ok {
		multiplier = ActivityMultipliers[models.ActivitySedentary]
	}
	tdee := bmr * multiplier

	target := tdee
	switch goal {
	case models.GoalLose:
		target -= loseCalorieDeficit
	case models.GoalGain:
		target += gainCalorieSurplus
	}

	return Metabolism{BMR: bmr, TDEE: tdee, TargetCalories: target}
}

// MacroTargets splits a calorie target into protein/carb/fat gram targets
// using the fixed 30/40/30 split.
func MacroTargets(targetCalories float64) models.MacroNutrients {
	return models.MacroNutrients{
		Calories:      targetCalories,
		Protein:       math.Round(targetCalories * proteinCalorieShare / caloriesPerGramProtein),
		Carbohydrates: math.Round(targetCalories * carbCalorieShare / caloriesPerGramCarb),
		Fat:           math.Round(targetCalories * fatCalorieShare / caloriesPerGramFat),
	}
}

// ApplyMetabolism recomputes the derived fields on a profile in place.
// Called before every profile persist so BMR/TDEE/target never drift from
// the metabolic inputs.
func ApplyMetabolism(profile *models.UserProfile) {
	m := CalculateMetabolism(profile.Gender, profile.Age, profile.Height, profile.Weight, profile.ActivityLevel, profile.Goal)
	profile.BMR = m.BMR
	profile.TDEE = m.TDEE
	profile.TargetCalories = m.TargetCalories
}
