package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nutrimind_server/models"
	"nutrimind_server/routes"
	"nutrimind_server/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJSONGenerator struct {
	payload []byte
}

func (s *stubJSONGenerator) GenerateJSON(ctx context.Context, prompt string, schema map[string]any) ([]byte, error) {
	return s.payload, nil
}

type stubImageGenerator struct {
	calls int32
}

func (s *stubImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, string, error) {
	atomic.AddInt32(&s.calls, 1)
	return "aW1hZ2U=", "image/png", nil
}

func newPlanRouter(t *testing.T, gen *stubJSONGenerator, imgGen *stubImageGenerator) (*mux.Router, *services.StateService, *services.ImageService) {
	t.Helper()
	state := services.NewStateService()
	mealGen := services.NewMealGenService(gen, state)
	images := services.NewImageService(imgGen, nil)

	r := mux.NewRouter()
	routes.RegisterPlanRoutes(r, mealGen, state, images)
	return r, state, images
}

func installPlanFixture(state *services.StateService) {
	data := models.NewUserData()
	data.Profile = &models.UserProfile{TargetCalories: 2000}

	week := models.WeeklyPlan{WeekNumber: 0, Plan: make([]models.DailyPlan, 7)}
	dayNames := []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}
	for i := range week.Plan {
		week.Plan[i] = models.DailyPlan{DayOfWeek: dayNames[i]}
	}
	week.Plan[2].Meals = []models.Meal{
		{Name: "Poulet riz", Macros: models.MacroNutrients{Calories: 1100}},
		{Name: "Salade", Macros: models.MacroNutrients{Calories: 750}},
	}
	services.RecomputeDayTotals(&week.Plan[2])
	week.Plan[3].Meals = []models.Meal{
		{Name: "Raclette", Macros: models.MacroNutrients{Calories: 2500}},
	}
	services.RecomputeDayTotals(&week.Plan[3])

	data.MealPlans = []models.WeeklyPlan{week}
	state.Install("u1", data)
}

func getStatus(t *testing.T, r *mux.Router, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec.Code, body
}

func TestGetDayStatusClassifiesAgainstTarget(t *testing.T) {
	r, state, _ := newPlanRouter(t, &stubJSONGenerator{}, &stubImageGenerator{})
	installPlanFixture(state)

	// 1850 of 2000 kcal sits inside the on-target band
	code, body := getStatus(t, r, "/api/plans/u1/weeks/0/days/2/status")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.DayStatusOnTarget, body["status"])
	assert.InDelta(t, 92.5, body["caloriePercent"], 0.001)
	assert.InDelta(t, 150, body["residualCalories"], 0.001)

	// 2500 of 2000 kcal overshoots by more than 10%
	code, body = getStatus(t, r, "/api/plans/u1/weeks/0/days/3/status")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.DayStatusOverTarget, body["status"])
	assert.Equal(t, false, body["isPerfectDay"])

	// an empty day is always under target
	code, body = getStatus(t, r, "/api/plans/u1/weeks/0/days/0/status")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.DayStatusUnderTarget, body["status"])
}

func TestGetDayStatusMissingPlanIsNotFound(t *testing.T) {
	r, state, _ := newPlanRouter(t, &stubJSONGenerator{}, &stubImageGenerator{})
	installPlanFixture(state)

	code, _ := getStatus(t, r, "/api/plans/u1/weeks/9/days/0/status")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = getStatus(t, r, "/api/plans/unknown/weeks/0/days/0/status")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGenerateWeekWarmsImageCache(t *testing.T) {
	days := make([]models.DailyPlan, 7)
	dayNames := []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}
	for i := range days {
		days[i] = models.DailyPlan{
			DayOfWeek: dayNames[i],
			Meals:     []models.Meal{{Name: "Bol de Quinoa", Macros: models.MacroNutrients{Calories: 500}}},
		}
	}
	payload, err := json.Marshal(map[string]any{"plan": days})
	require.NoError(t, err)

	imgGen := &stubImageGenerator{}
	r, state, images := newPlanRouter(t, &stubJSONGenerator{payload: payload}, imgGen)

	data := models.NewUserData()
	data.Profile = &models.UserProfile{TargetCalories: 2000, MealsPerDay: 1}
	state.Install("u1", data)

	body := bytes.NewBufferString(`{"language":"fr"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/plans/u1/weeks/0/generate", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// all 7 days share one meal name, so preloading coalesces into a
	// single generation that lands in the memory tier
	require.Eventually(t, func() bool {
		return images.Stats().MemoryEntries == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&imgGen.calls))
}
