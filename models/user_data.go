package models

// UserData is the full in-memory state for one user — everything the sync
// coordinator mirrors remotely as a whole-collection snapshot.
type UserData struct {
	Profile          *UserProfile        `json:"profile"`
	MealPlans        []WeeklyPlan        `json:"mealPlans"`
	TrackingData     []TrackingEntry     `json:"trackingData"`
	CompletedMeals   map[string][]string `json:"completedMeals"` // date key -> consumed meal names
	WaterIntake      []WaterIntake       `json:"waterIntake"`
	BodyMeasurements []BodyMeasurement   `json:"bodyMeasurements"`
	Alerts           []NutritionalAlert  `json:"alerts"`
	Activities       []Activity          `json:"activities"`
}

// NewUserData returns empty state with all collections initialized.
func NewUserData() *UserData {
	return &UserData{
		MealPlans:        []WeeklyPlan{},
		TrackingData:     []TrackingEntry{},
		CompletedMeals:   map[string][]string{},
		WaterIntake:      []WaterIntake{},
		BodyMeasurements: []BodyMeasurement{},
		Alerts:           []NutritionalAlert{},
		Activities:       []Activity{},
	}
}

// Clone deep-copies the state so a sync push can read a coherent snapshot
// while mutations continue on the original.
func (d *UserData) Clone() *UserData {
	if d == nil {
		return nil
	}
	out := &UserData{
		MealPlans:        make([]WeeklyPlan, len(d.MealPlans)),
		TrackingData:     append([]TrackingEntry(nil), d.TrackingData...),
		CompletedMeals:   make(map[string][]string, len(d.CompletedMeals)),
		WaterIntake:      append([]WaterIntake(nil), d.WaterIntake...),
		BodyMeasurements: append([]BodyMeasurement(nil), d.BodyMeasurements...),
		Alerts:           append([]NutritionalAlert(nil), d.Alerts...),
		Activities:       append([]Activity(nil), d.Activities...),
	}
	if d.Profile != nil {
		profile := *d.Profile
		out.Profile = &profile
	}
	for i, plan := range d.MealPlans {
		out.MealPlans[i] = plan.Clone()
	}
	for date, names := range d.CompletedMeals {
		out.CompletedMeals[date] = append([]string(nil), names...)
	}
	return out
}

// Clone deep-copies a weekly plan including every day's meal list.
func (p WeeklyPlan) Clone() WeeklyPlan {
	out := WeeklyPlan{WeekNumber: p.WeekNumber, Plan: make([]DailyPlan, len(p.Plan))}
	for i, day := range p.Plan {
		meals := make([]Meal, len(day.Meals))
		for j, meal := range day.Meals {
			meal.Ingredients = append([]string(nil), meal.Ingredients...)
			meal.Instructions = append([]string(nil), meal.Instructions...)
			meals[j] = meal
		}
		out.Plan[i] = DailyPlan{DayOfWeek: day.DayOfWeek, Meals: meals, DailyTotals: day.DailyTotals}
	}
	return out
}
