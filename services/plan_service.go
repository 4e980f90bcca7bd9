package services

import (
	"fmt"

	"nutrimind_server/models"
)

// Day status classifications relative to the calorie target.
const (
	DayStatusUnderTarget = "under_target"
	DayStatusOnTarget    = "on_target"
	DayStatusOverTarget  = "over_target"
)

// Classification thresholds as ratios of the daily target. Near-goal,
// perfect-day and exceeded are tuned per alert message, so they stay
// separate constants instead of one collapsed band.
const (
	NearGoalRatio    = 0.90
	PerfectLowRatio  = 0.95
	PerfectHighRatio = 1.05
	ExceededRatio    = 1.10
)

// SumMacros returns the elementwise sum of the meals' macros.
func SumMacros(meals []models.Meal) models.MacroNutrients {
	var total models.MacroNutrients
	for _, meal := range meals {
		total = total.Add(meal.Macros)
	}
	return total
}

// RecomputeDayTotals resets DailyTotals to the sum of the current meal
// list. Idempotent; called after every meal mutation and after applying
// any generated result (the model's own totals are never trusted).
func RecomputeDayTotals(day *models.DailyPlan) {
	day.DailyTotals = SumMacros(day.Meals)
}

// AddMeal appends a meal and recomputes the day's totals.
func AddMeal(day *models.DailyPlan, meal models.Meal) {
	day.Meals = append(day.Meals, meal)
	RecomputeDayTotals(day)
}

// ReplaceMeal swaps the meal at index and recomputes totals. An
// out-of-bounds index is a programmer error: callers must only pass
// indices obtained from the current plan.
func ReplaceMeal(day *models.DailyPlan, index int, meal models.Meal) {
	if index < 0 || index >= len(day.Meals) {
		panic(fmt.Sprintf("ReplaceMeal: index %d out of bounds for %d meals", index, len(day.Meals)))
	}
	day.Meals[index] = meal
	RecomputeDayTotals(day)
}

// RemoveMeal deletes the meal at index and recomputes totals. Same
// out-of-bounds contract as ReplaceMeal.
func RemoveMeal(day *models.DailyPlan, index int) {
	if index < 0 || index >= len(day.Meals) {
		panic(fmt.Sprintf("RemoveMeal: index %d out of bounds for %d meals", index, len(day.Meals)))
	}
	day.Meals = append(day.Meals[:index], day.Meals[index+1:]...)
	RecomputeDayTotals(day)
}

// CalorieRatio returns consumed/target, defined as 0 when the target is 0
// so progress displays never divide by zero.
func CalorieRatio(consumed, target float64) float64 {
	if target == 0 {
		return 0
	}
	return consumed / target
}

// MacroPercent returns the progress percentage toward a macro target,
// 0 when the target is 0.
func MacroPercent(consumed, target float64) float64 {
	return CalorieRatio(consumed, target) * 100
}

// DayStatus classifies a day's calorie total against the target. A day
// with no meals totals zero and is always under target.
func DayStatus(totalCalories, targetCalories float64) string {
	ratio := CalorieRatio(totalCalories, targetCalories)
	switch {
	case ratio < NearGoalRatio:
		return DayStatusUnderTarget
	case ratio > ExceededRatio:
		return DayStatusOverTarget
	default:
		return DayStatusOnTarget
	}
}

// IsNearGoal reports whether the total sits at >=90% of target but still
// below it — the "almost there" encouragement band.
func IsNearGoal(totalCalories, targetCalories float64) bool {
	ratio := CalorieRatio(totalCalories, targetCalories)
	return ratio >= NearGoalRatio && ratio < 1.0
}

// IsExceeded reports whether the total overshot the target by more than 10%.
func IsExceeded(totalCalories, targetCalories float64) bool {
	return CalorieRatio(totalCalories, targetCalories) > ExceededRatio
}

// IsPerfectDay reports whether the total landed in the 95–105% band.
func IsPerfectDay(totalCalories, targetCalories float64) bool {
	ratio := CalorieRatio(totalCalories, targetCalories)
	return ratio >= PerfectLowRatio && ratio <= PerfectHighRatio
}

// ResidualCalories is the daily target minus the calories already present
// in the day. May be negative when the day is over target.
func ResidualCalories(day models.DailyPlan, targetCalories float64) float64 {
	return targetCalories - SumMacros(day.Meals).Calories
}

// ResidualExcluding sizes a replacement meal: target minus the sum of the
// *other* meals' calories. The excluded index must be in bounds.
func ResidualExcluding(day models.DailyPlan, excludeIndex int, targetCalories float64) float64 {
	if excludeIndex < 0 || excludeIndex >= len(day.Meals) {
		panic(fmt.Sprintf("ResidualExcluding: index %d out of bounds for %d meals", excludeIndex, len(day.Meals)))
	}
	var others float64
	for i, meal := range day.Meals {
		if i == excludeIndex {
			continue
		}
		others += meal.Macros.Calories
	}
	return targetCalories - others
}

// FindWeek returns the plan with the given week number, or nil. At most
// one plan exists per week index.
func FindWeek(plans []models.WeeklyPlan, weekNumber int) *models.WeeklyPlan {
	for i := range plans {
		if plans[i].WeekNumber == weekNumber {
			return &plans[i]
		}
	}
	return nil
}

// UpsertWeek replaces the plan with the same week number, or appends,
// keeping the slice sorted by week number.
func UpsertWeek(plans []models.WeeklyPlan, plan models.WeeklyPlan) []models.WeeklyPlan {
	for i := range plans {
		if plans[i].WeekNumber == plan.WeekNumber {
			plans[i] = plan
			return plans
		}
	}
	plans = append(plans, plan)
	for i := len(plans) - 1; i > 0 && plans[i].WeekNumber < plans[i-1].WeekNumber; i-- {
		plans[i], plans[i-1] = plans[i-1], plans[i]
	}
	return plans
}
