package services

import (
	"context"
	"encoding/json"
	"testing"

	"nutrimind_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator returns canned payloads and records the prompts it saw.
type fakeGenerator struct {
	payloads []string
	err      error
	prompts  []string
	calls    int
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, schema map[string]any) ([]byte, error) {
	f.prompts = append(f.prompts, prompt)
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	payload := f.payloads[0]
	if len(f.payloads) > 1 {
		f.payloads = f.payloads[1:]
	}
	return []byte(payload), nil
}

func testProfile() *models.UserProfile {
	profile := &models.UserProfile{
		Name:          "Claire",
		Gender:        models.GenderFemale,
		Age:           30,
		Height:        165,
		Weight:        60,
		ActivityLevel: models.ActivityModerate,
		Goal:          models.GoalLose,
		MealsPerDay:   3,
		CookingLevel:  models.CookingIntermediate,
		DailyBudget:   15,
	}
	ApplyMetabolism(profile)
	return profile
}

func newMealGenFixture(t *testing.T, gen *fakeGenerator) (*MealGenService, *StateService) {
	t.Helper()
	state := NewStateService()
	data := models.NewUserData()
	data.Profile = testProfile()
	state.Install("user-1", data)
	return NewMealGenService(gen, state), state
}

func weeklyPayload(days int) string {
	plan := make([]map[string]any, days)
	for i := range plan {
		plan[i] = map[string]any{
			"dayOfWeek": "Lundi",
			"meals": []map[string]any{{
				"name":   "Salade",
				"type":   "Déjeuner",
				"macros": map[string]any{"calories": 500, "protein": 30, "carbohydrates": 40, "fat": 20},
				// wrong on purpose, totals must be recomputed server-side
			}},
			"dailyTotals": map[string]any{"calories": 9999, "protein": 0, "carbohydrates": 0, "fat": 0},
		}
	}
	raw, _ := json.Marshal(map[string]any{"plan": plan})
	return string(raw)
}

func TestGenerateWeeklyPlanRecomputesTotalsAndInstalls(t *testing.T) {
	gen := &fakeGenerator{payloads: []string{weeklyPayload(7)}}
	svc, state := newMealGenFixture(t, gen)

	plan, err := svc.GenerateWeeklyPlan(context.Background(), "user-1", 0, models.LanguageFrench, "")
	require.NoError(t, err)
	require.Len(t, plan.Plan, 7)
	assert.Equal(t, 500.0, plan.Plan[0].DailyTotals.Calories)

	snapshot := state.Snapshot("user-1")
	require.NotNil(t, FindWeek(snapshot.MealPlans, 0))
}

func TestGenerateWeeklyPlanRejectsWrongDayCount(t *testing.T) {
	gen := &fakeGenerator{payloads: []string{weeklyPayload(5)}}
	svc, state := newMealGenFixture(t, gen)

	_, err := svc.GenerateWeeklyPlan(context.Background(), "user-1", 0, models.LanguageFrench, "")
	var structErr *StructureError
	require.ErrorAs(t, err, &structErr)

	// nothing must be installed on failure
	assert.Empty(t, state.Snapshot("user-1").MealPlans)
}

func installWeekWithDay(t *testing.T, state *StateService, calories float64) {
	t.Helper()
	err := state.Update("user-1", func(data *models.UserData) error {
		day := models.DailyPlan{DayOfWeek: "Lundi"}
		AddMeal(&day, models.Meal{Name: "Poulet rôti", Type: "Dîner", Macros: models.MacroNutrients{Calories: calories}})
		data.MealPlans = UpsertWeek(data.MealPlans, models.WeeklyPlan{WeekNumber: 0, Plan: []models.DailyPlan{day}})
		return nil
	})
	require.NoError(t, err)
}

func TestReplaceMealInPlanUpdatesState(t *testing.T) {
	gen := &fakeGenerator{payloads: []string{`{"name":"Bowl de saumon","type":"Dîner","macros":{"calories":600,"protein":40,"carbohydrates":45,"fat":22}}`}}
	svc, state := newMealGenFixture(t, gen)
	installWeekWithDay(t, state, 700)

	meal, err := svc.ReplaceMealInPlan(context.Background(), "user-1", 0, 0, 0, models.LanguageFrench, RegenerationOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bowl de saumon", meal.Name)

	day := state.Snapshot("user-1").MealPlans[0].Plan[0]
	require.Len(t, day.Meals, 1)
	assert.Equal(t, 600.0, day.DailyTotals.Calories)
}

func TestReplaceMealInPlanRejectsBadIndex(t *testing.T) {
	gen := &fakeGenerator{}
	svc, state := newMealGenFixture(t, gen)
	installWeekWithDay(t, state, 700)

	_, err := svc.ReplaceMealInPlan(context.Background(), "user-1", 0, 0, 5, models.LanguageFrench, RegenerationOptions{})
	require.Error(t, err)
	assert.Zero(t, gen.calls)
}

func TestCompleteDaySkipsBackendWhenOverTarget(t *testing.T) {
	gen := &fakeGenerator{}
	svc, state := newMealGenFixture(t, gen)
	installWeekWithDay(t, state, 5000) // well over any target

	meals, err := svc.CompleteDay(context.Background(), "user-1", 0, 0, models.LanguageFrench, RegenerationOptions{})
	require.NoError(t, err)
	assert.Empty(t, meals)
	assert.Zero(t, gen.calls)
}

func TestCompleteDayAppendsGeneratedMeals(t *testing.T) {
	gen := &fakeGenerator{payloads: []string{`{"meals":[{"name":"Skyr aux fruits","type":"Collation","macros":{"calories":200,"protein":20,"carbohydrates":20,"fat":2}}]}`}}
	svc, state := newMealGenFixture(t, gen)
	installWeekWithDay(t, state, 700)

	meals, err := svc.CompleteDay(context.Background(), "user-1", 0, 0, models.LanguageFrench, RegenerationOptions{})
	require.NoError(t, err)
	require.Len(t, meals, 1)

	day := state.Snapshot("user-1").MealPlans[0].Plan[0]
	require.Len(t, day.Meals, 2)
	assert.Equal(t, 900.0, day.DailyTotals.Calories)
}

func TestShoppingListFallsBackWhenBackendUnavailable(t *testing.T) {
	gen := &fakeGenerator{err: ErrGenerationUnavailable}
	svc, state := newMealGenFixture(t, gen)

	err := state.Update("user-1", func(data *models.UserData) error {
		day := models.DailyPlan{DayOfWeek: "Lundi"}
		AddMeal(&day, models.Meal{Name: "Omelette", Ingredients: []string{"3 oeufs", "2 oeufs"}})
		data.MealPlans = UpsertWeek(data.MealPlans, models.WeeklyPlan{WeekNumber: 0, Plan: []models.DailyPlan{day}})
		return nil
	})
	require.NoError(t, err)

	list, err := svc.ShoppingList(context.Background(), "user-1", 0, models.LanguageFrench)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	item, ok := findItem(list, "oeufs")
	require.True(t, ok)
	assert.Equal(t, "5", item.Quantity)
}

func TestShoppingListEmptyWeekYieldsNil(t *testing.T) {
	gen := &fakeGenerator{}
	svc, state := newMealGenFixture(t, gen)
	err := state.Update("user-1", func(data *models.UserData) error {
		data.MealPlans = UpsertWeek(data.MealPlans, models.WeeklyPlan{WeekNumber: 0, Plan: []models.DailyPlan{{DayOfWeek: "Lundi"}}})
		return nil
	})
	require.NoError(t, err)

	list, err := svc.ShoppingList(context.Background(), "user-1", 0, models.LanguageFrench)
	require.NoError(t, err)
	assert.Nil(t, list)
	assert.Zero(t, gen.calls)
}
