package services

import (
	"testing"
	"time"

	"nutrimind_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday of the start week, so the plan day index is 2.
var alertNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)

const alertToday = "2026-08-26"

func newAlertFixture(t *testing.T) (*AlertService, *StateService) {
	t.Helper()
	state := NewStateService()
	data := models.NewUserData()
	data.Profile = &models.UserProfile{
		UserID:         "user-1",
		Name:           "Claire",
		TargetCalories: 2000,
		StartDate:      "2026-08-24", // the Monday before alertNow
	}
	state.Install("user-1", data)
	return NewAlertService(state), state
}

// installDayMeals puts a 7-day plan in week 0 with the given meals on
// Wednesday and marks them all completed today.
func installDayMeals(t *testing.T, state *StateService, meals ...models.Meal) {
	t.Helper()
	err := state.Update("user-1", func(data *models.UserData) error {
		days := make([]models.DailyPlan, 7)
		for i := range days {
			days[i] = models.DailyPlan{DayOfWeek: "Jour"}
		}
		days[2].Meals = meals
		RecomputeDayTotals(&days[2])
		data.MealPlans = UpsertWeek(data.MealPlans, models.WeeklyPlan{WeekNumber: 0, Plan: days})

		for _, meal := range meals {
			data.CompletedMeals[alertToday] = append(data.CompletedMeals[alertToday], meal.Name)
		}
		return nil
	})
	require.NoError(t, err)
}

func alertIDs(alerts []models.NutritionalAlert) []string {
	ids := make([]string, len(alerts))
	for i, alert := range alerts {
		ids[i] = alert.ID
	}
	return ids
}

func TestNearGoalAlert(t *testing.T) {
	svc, state := newAlertFixture(t)
	installDayMeals(t, state,
		models.Meal{Name: "Bowl", Macros: models.MacroNutrients{Calories: 1850, Protein: 160}},
	)

	created, err := svc.GenerateDailyAlerts("user-1", models.LanguageFrench, alertNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"calories-near-goal-" + alertToday}, alertIDs(created))
	assert.Equal(t, models.AlertInfo, created[0].Type)
}

func TestPerfectDayAlert(t *testing.T) {
	svc, state := newAlertFixture(t)
	installDayMeals(t, state,
		models.Meal{Name: "Bowl", Macros: models.MacroNutrients{Calories: 2000, Protein: 160}},
	)

	created, err := svc.GenerateDailyAlerts("user-1", models.LanguageEnglish, alertNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"perfect-day-" + alertToday}, alertIDs(created))
	assert.Equal(t, models.AlertSuccess, created[0].Type)
}

func TestExceededAlert(t *testing.T) {
	svc, state := newAlertFixture(t)
	installDayMeals(t, state,
		models.Meal{Name: "Festin", Macros: models.MacroNutrients{Calories: 2300, Protein: 160}},
	)

	created, err := svc.GenerateDailyAlerts("user-1", models.LanguageFrench, alertNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"calories-exceeded-" + alertToday}, alertIDs(created))
	assert.Equal(t, models.AlertWarning, created[0].Type)
	assert.Contains(t, created[0].Message, "300")
}

func TestProteinLowRequiresTwoMeals(t *testing.T) {
	svc, state := newAlertFixture(t)
	// one low-protein meal only: no protein alert yet
	installDayMeals(t, state,
		models.Meal{Name: "Pasta", Macros: models.MacroNutrients{Calories: 700, Protein: 20}},
	)
	created, err := svc.GenerateDailyAlerts("user-1", models.LanguageFrench, alertNow)
	require.NoError(t, err)
	assert.NotContains(t, alertIDs(created), "protein-low-"+alertToday)

	// second low-protein meal crosses the meal-count threshold
	err = state.Update("user-1", func(data *models.UserData) error {
		week := FindWeek(data.MealPlans, 0)
		AddMeal(&week.Plan[2], models.Meal{Name: "Frites", Macros: models.MacroNutrients{Calories: 500, Protein: 10}})
		data.CompletedMeals[alertToday] = append(data.CompletedMeals[alertToday], "Frites")
		return nil
	})
	require.NoError(t, err)

	created, err = svc.GenerateDailyAlerts("user-1", models.LanguageFrench, alertNow)
	require.NoError(t, err)
	assert.Contains(t, alertIDs(created), "protein-low-"+alertToday)
}

func TestNoMealsAlertAfterOneInactiveDay(t *testing.T) {
	svc, state := newAlertFixture(t)
	// profile started two days ago and nothing was ever checked off
	require.NoError(t, state.Update("user-1", func(data *models.UserData) error {
		data.Profile.StartDate = "2026-08-24"
		return nil
	}))

	created, err := svc.GenerateDailyAlerts("user-1", models.LanguageFrench, alertNow)
	require.NoError(t, err)
	assert.Contains(t, alertIDs(created), "no-meals-recent-"+alertToday)

	// a meal logged yesterday suppresses the rule
	svc2, state2 := newAlertFixture(t)
	require.NoError(t, state2.Update("user-1", func(data *models.UserData) error {
		data.CompletedMeals["2026-08-25"] = []string{"Dîner"}
		return nil
	}))
	created, err = svc2.GenerateDailyAlerts("user-1", models.LanguageFrench, alertNow)
	require.NoError(t, err)
	assert.NotContains(t, alertIDs(created), "no-meals-recent-"+alertToday)
}

func TestGenerateDailyAlertsIsIdempotent(t *testing.T) {
	svc, state := newAlertFixture(t)
	installDayMeals(t, state,
		models.Meal{Name: "Bowl", Macros: models.MacroNutrients{Calories: 2000, Protein: 160}},
	)

	first, err := svc.GenerateDailyAlerts("user-1", models.LanguageFrench, alertNow)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.GenerateDailyAlerts("user-1", models.LanguageFrench, alertNow)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, svc.List("user-1", false), len(first))
}

func TestMarkReadAndDismiss(t *testing.T) {
	svc, state := newAlertFixture(t)
	require.NoError(t, state.Update("user-1", func(data *models.UserData) error {
		data.Alerts = append(data.Alerts,
			models.NutritionalAlert{ID: "a-1", Type: models.AlertInfo},
			models.NutritionalAlert{ID: "a-2", Type: models.AlertWarning},
		)
		return nil
	}))

	require.NoError(t, svc.MarkRead("user-1", "a-1"))
	assert.Len(t, svc.List("user-1", true), 1)
	assert.Len(t, svc.List("user-1", false), 2)

	require.NoError(t, svc.Dismiss("user-1", "a-2"))
	assert.Empty(t, svc.List("user-1", true))

	assert.Error(t, svc.MarkRead("user-1", "missing"))
	assert.Error(t, svc.Dismiss("user-1", "missing"))
}
