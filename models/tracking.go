package models

// TrackingEntry is a weight record for one local calendar date.
type TrackingEntry struct {
	Date   string  `json:"date" dynamodbav:"date"` // YYYY-MM-DD, local
	Weight float64 `json:"weight" dynamodbav:"weight" validate:"gt=0"`
}

// WaterIntake holds one day's water consumption. At most one record per
// date; upserting an existing date replaces the record.
type WaterIntake struct {
	Date   string  `json:"date" dynamodbav:"date"`
	Amount float64 `json:"amount" dynamodbav:"amount" validate:"gte=0"` // ml
	Goal   float64 `json:"goal" dynamodbav:"goal" validate:"gte=0"`     // ml
}

// BodyMeasurement holds one day's measurements. All fields optional.
type BodyMeasurement struct {
	Date    string  `json:"date" dynamodbav:"date"`
	Weight  float64 `json:"weight,omitempty" dynamodbav:"weight,omitempty"`   // kg
	Waist   float64 `json:"waist,omitempty" dynamodbav:"waist,omitempty"`     // cm
	Hips    float64 `json:"hips,omitempty" dynamodbav:"hips,omitempty"`       // cm
	Chest   float64 `json:"chest,omitempty" dynamodbav:"chest,omitempty"`     // cm
	Arms    float64 `json:"arms,omitempty" dynamodbav:"arms,omitempty"`       // cm
	Thighs  float64 `json:"thighs,omitempty" dynamodbav:"thighs,omitempty"`   // cm
	BodyFat float64 `json:"bodyFat,omitempty" dynamodbav:"bodyFat,omitempty"` // percent
}

// Activity is a user-logged exercise session.
type Activity struct {
	ID             string  `json:"id" dynamodbav:"activityId"`
	Date           string  `json:"date" dynamodbav:"date"`
	Type           string  `json:"type" dynamodbav:"type" validate:"required"` // running, cycling, gym, ...
	Duration       int     `json:"duration" dynamodbav:"duration" validate:"gt=0"` // minutes
	CaloriesBurned float64 `json:"caloriesBurned" dynamodbav:"caloriesBurned" validate:"gte=0"`
	Notes          string  `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

// DynamoDB table names for tracking collections
const (
	TrackingEntriesTable  = "NutriTrackingEntries"
	WaterIntakeTable      = "NutriWaterIntake"
	BodyMeasurementsTable = "NutriBodyMeasurements"
	CompletedMealsTable   = "NutriCompletedMeals"
	ActivitiesTable       = "NutriActivities"
)
