package models

// UserProfile defines the structure for user profiles.
// BMR, TDEE and TargetCalories are derived from the five metabolic inputs
// (gender, age, height, weight, activity level) plus the goal direction and
// are recomputed before every persist — they are never edited directly.
type UserProfile struct {
	UserID                   string  `json:"userId" dynamodbav:"userId"`
	Name                     string  `json:"name" dynamodbav:"name" validate:"required"`
	Gender                   string  `json:"gender" dynamodbav:"gender" validate:"required,oneof=male female"`
	Age                      int     `json:"age" dynamodbav:"age" validate:"required,gt=0,lt=130"`
	Height                   float64 `json:"height" dynamodbav:"height" validate:"required,gt=0"` // cm
	Weight                   float64 `json:"weight" dynamodbav:"weight" validate:"required,gt=0"` // kg
	StartWeight              float64 `json:"startWeight" dynamodbav:"startWeight"`                // kg
	GoalWeight               float64 `json:"goalWeight" dynamodbav:"goalWeight"`                  // kg
	ActivityLevel            string  `json:"activityLevel" dynamodbav:"activityLevel" validate:"required,oneof=sedentary light moderate active very_active"`
	Goal                     string  `json:"goal" dynamodbav:"goal" validate:"required,oneof=lose maintain gain"`
	Preferences              string  `json:"preferences" dynamodbav:"preferences"` // comma-separated preferences/allergies
	Notes                    string  `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	Remarks                  string  `json:"remarks,omitempty" dynamodbav:"remarks,omitempty"`
	DailyBudget              float64 `json:"dailyBudget" dynamodbav:"dailyBudget"` // euros
	CookingLevel             string  `json:"cookingLevel" dynamodbav:"cookingLevel" validate:"required,oneof=beginner intermediate expert"`
	MealsPerDay              int     `json:"mealsPerDay" dynamodbav:"mealsPerDay" validate:"required,gte=1,lte=8"`
	BMR                      float64 `json:"bmr" dynamodbav:"bmr"`
	TDEE                     float64 `json:"tdee" dynamodbav:"tdee"`
	TargetCalories           float64 `json:"targetCalories" dynamodbav:"targetCalories"`
	GoalTimeline             int     `json:"goalTimeline" dynamodbav:"goalTimeline"` // weeks
	StartDate                string  `json:"startDate" dynamodbav:"startDate"`       // YYYY-MM-DD, local
	MaxPrepTimeWeekLunch     int     `json:"maxPrepTimeWeekLunch" dynamodbav:"maxPrepTimeWeekLunch"`         // minutes
	MaxPrepTimeWeekDinner    int     `json:"maxPrepTimeWeekDinner" dynamodbav:"maxPrepTimeWeekDinner"`       // minutes
	MaxPrepTimeWeekendLunch  int     `json:"maxPrepTimeWeekendLunch" dynamodbav:"maxPrepTimeWeekendLunch"`   // minutes
	MaxPrepTimeWeekendDinner int     `json:"maxPrepTimeWeekendDinner" dynamodbav:"maxPrepTimeWeekendDinner"` // minutes
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "NutriUserProfiles"
