package models

// MacroNutrients holds a macro breakdown. All values are non-negative;
// calories in kcal, the rest in grams.
type MacroNutrients struct {
	Calories      float64 `json:"calories" dynamodbav:"calories"`
	Protein       float64 `json:"protein" dynamodbav:"protein"`
	Carbohydrates float64 `json:"carbohydrates" dynamodbav:"carbohydrates"`
	Fat           float64 `json:"fat" dynamodbav:"fat"`
}

// Add returns the elementwise sum of two macro records.
func (m MacroNutrients) Add(other MacroNutrients) MacroNutrients {
	return MacroNutrients{
		Calories:      m.Calories + other.Calories,
		Protein:       m.Protein + other.Protein,
		Carbohydrates: m.Carbohydrates + other.Carbohydrates,
		Fat:           m.Fat + other.Fat,
	}
}

// Meal is a single generated meal with its recipe details.
type Meal struct {
	Name          string         `json:"name" dynamodbav:"name"`
	Type          string         `json:"type" dynamodbav:"type"` // e.g. Breakfast, Lunch, Snack 1
	Description   string         `json:"description" dynamodbav:"description"`
	EstimatedCost string         `json:"estimatedCost,omitempty" dynamodbav:"estimatedCost,omitempty"`
	Macros        MacroNutrients `json:"macros" dynamodbav:"macros"`
	Ingredients   []string       `json:"ingredients" dynamodbav:"ingredients"`
	Instructions  []string       `json:"instructions" dynamodbav:"instructions"`
}

// DailyPlan is one day's ordered meal list. DailyTotals must equal the sum
// of the meals' macros at all times; it is recomputed after every mutation.
type DailyPlan struct {
	DayOfWeek   string         `json:"dayOfWeek" dynamodbav:"dayOfWeek"`
	Meals       []Meal         `json:"meals" dynamodbav:"meals"`
	DailyTotals MacroNutrients `json:"dailyTotals" dynamodbav:"dailyTotals"`
}

// WeeklyPlan holds 7 daily plans, Monday first. WeekNumber is the ordinal
// count of weeks since the user's start date, not a calendar week.
type WeeklyPlan struct {
	WeekNumber int         `json:"weekNumber" dynamodbav:"weekNumber"`
	Plan       []DailyPlan `json:"plan" dynamodbav:"plan"`
}

// MealPlansTable is the DynamoDB table name for weekly plans
// (one row per user id + week number).
const MealPlansTable = "NutriMealPlans"
