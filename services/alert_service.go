package services

import (
	"fmt"
	"time"

	"nutrimind_server/models"
	"nutrimind_server/utils"
)

// proteinLowRatio is the fraction of the daily protein target under which
// the low-protein warning fires, once at least two meals were consumed.
const proteinLowRatio = 0.70

// minMealsForProteinAlert avoids warning about protein early in the day.
const minMealsForProteinAlert = 2

// AlertService derives daily notifications from consumption. Alert IDs
// encode the rule and the date, which makes a day's alerts idempotent.
type AlertService struct {
	State *StateService
}

// NewAlertService wires the alert rule engine.
func NewAlertService(state *StateService) *AlertService {
	return &AlertService{State: state}
}

type alertTexts struct {
	nearGoalTitle string
	nearGoalMsg   string
	exceededTitle string
	exceededMsg   string
	proteinTitle  string
	proteinMsg    string
	noMealsTitle  string
	noMealsMsg    string
	perfectTitle  string
	perfectMsg    string
}

var alertTextsByLanguage = map[string]alertTexts{
	models.LanguageFrench: {
		nearGoalTitle: "Objectif presque atteint",
		nearGoalMsg:   "Vous êtes à %.0f%% de votre objectif calorique. Encore un petit effort !",
		exceededTitle: "Objectif calorique dépassé",
		exceededMsg:   "Vous avez dépassé votre objectif de %.0f calories aujourd'hui.",
		proteinTitle:  "Apport en protéines faible",
		proteinMsg:    "Seulement %.0fg de protéines sur un objectif de %.0fg. Pensez à une source de protéines au prochain repas.",
		noMealsTitle:  "Aucun repas enregistré",
		noMealsMsg:    "Aucun repas validé depuis plus d'un jour. Pensez à cocher vos repas consommés !",
		perfectTitle:  "Journée parfaite",
		perfectMsg:    "Bravo ! Vous avez atteint %.0f%% de votre objectif calorique aujourd'hui.",
	},
	models.LanguageEnglish: {
		nearGoalTitle: "Almost at your goal",
		nearGoalMsg:   "You are at %.0f%% of your calorie goal. Almost there!",
		exceededTitle: "Calorie goal exceeded",
		exceededMsg:   "You exceeded your goal by %.0f calories today.",
		proteinTitle:  "Low protein intake",
		proteinMsg:    "Only %.0fg of protein out of a %.0fg target. Consider a protein source for your next meal.",
		noMealsTitle:  "No meals logged",
		noMealsMsg:    "No meals checked off for more than a day. Remember to log what you eat!",
		perfectTitle:  "Perfect day",
		perfectMsg:    "Well done! You hit %.0f%% of your calorie goal today.",
	},
}

// consumedToday sums the macros of today's plan meals the user checked
// off. Meals are matched by name within the day's plan.
func consumedToday(data *models.UserData, today utils.DateKey, now time.Time) (models.MacroNutrients, int) {
	completed := data.CompletedMeals[string(today)]
	if len(completed) == 0 || data.Profile == nil {
		return models.MacroNutrients{}, 0
	}

	weekNumber := utils.WeekIndexSince(utils.DateKey(data.Profile.StartDate), now)
	week := FindWeek(data.MealPlans, weekNumber)
	if week == nil {
		return models.MacroNutrients{}, len(completed)
	}
	dayIndex := utils.MondayFirstIndex(now)
	if dayIndex >= len(week.Plan) {
		return models.MacroNutrients{}, len(completed)
	}

	consumedSet := make(map[string]bool, len(completed))
	for _, name := range completed {
		consumedSet[name] = true
	}

	var total models.MacroNutrients
	count := 0
	for _, meal := range week.Plan[dayIndex].Meals {
		if consumedSet[meal.Name] {
			total = total.Add(meal.Macros)
			count++
		}
	}
	return total, count
}

// hasRecentMeals reports whether any meal was checked off today or
// yesterday.
func hasRecentMeals(data *models.UserData, now time.Time) bool {
	today := utils.DateKeyFromTime(now)
	yesterday := utils.DateKeyFromTime(now.AddDate(0, 0, -1))
	return len(data.CompletedMeals[string(today)]) > 0 || len(data.CompletedMeals[string(yesterday)]) > 0
}

// GenerateDailyAlerts evaluates the rule set for the current day and
// appends any alerts not already present. Returns the newly created ones.
func (s *AlertService) GenerateDailyAlerts(userID, language string, now time.Time) ([]models.NutritionalAlert, error) {
	texts, ok := alertTextsByLanguage[language]
	if !ok {
		texts = alertTextsByLanguage[models.LanguageFrench]
	}

	var created []models.NutritionalAlert
	err := s.State.Update(userID, func(data *models.UserData) error {
		if data.Profile == nil {
			return fmt.Errorf("user %s has no profile", userID)
		}

		today := utils.DateKeyFromTime(now)
		target := data.Profile.TargetCalories
		consumed, mealCount := consumedToday(data, today, now)
		proteinTarget := MacroTargets(target).Protein

		var candidates []models.NutritionalAlert

		if IsExceeded(consumed.Calories, target) {
			candidates = append(candidates, models.NutritionalAlert{
				ID:      fmt.Sprintf("calories-exceeded-%s", today),
				Type:    models.AlertWarning,
				Title:   texts.exceededTitle,
				Message: fmt.Sprintf(texts.exceededMsg, consumed.Calories-target),
				Date:    string(today),
			})
		} else if IsNearGoal(consumed.Calories, target) {
			candidates = append(candidates, models.NutritionalAlert{
				ID:      fmt.Sprintf("calories-near-goal-%s", today),
				Type:    models.AlertInfo,
				Title:   texts.nearGoalTitle,
				Message: fmt.Sprintf(texts.nearGoalMsg, MacroPercent(consumed.Calories, target)),
				Date:    string(today),
			})
		}

		if IsPerfectDay(consumed.Calories, target) {
			candidates = append(candidates, models.NutritionalAlert{
				ID:      fmt.Sprintf("perfect-day-%s", today),
				Type:    models.AlertSuccess,
				Title:   texts.perfectTitle,
				Message: fmt.Sprintf(texts.perfectMsg, MacroPercent(consumed.Calories, target)),
				Date:    string(today),
			})
		}

		if mealCount >= minMealsForProteinAlert && proteinTarget > 0 &&
			consumed.Protein < proteinTarget*proteinLowRatio {
			candidates = append(candidates, models.NutritionalAlert{
				ID:      fmt.Sprintf("protein-low-%s", today),
				Type:    models.AlertWarning,
				Title:   texts.proteinTitle,
				Message: fmt.Sprintf(texts.proteinMsg, consumed.Protein, proteinTarget),
				Date:    string(today),
			})
		}

		startedBeforeYesterday := false
		if start, err := utils.DateKey(data.Profile.StartDate).Time(); err == nil {
			startedBeforeYesterday = now.Sub(start) > 24*time.Hour
		}
		if startedBeforeYesterday && !hasRecentMeals(data, now) {
			candidates = append(candidates, models.NutritionalAlert{
				ID:      fmt.Sprintf("no-meals-recent-%s", today),
				Type:    models.AlertInfo,
				Title:   texts.noMealsTitle,
				Message: texts.noMealsMsg,
				Date:    string(today),
			})
		}

		existing := make(map[string]bool, len(data.Alerts))
		for _, alert := range data.Alerts {
			existing[alert.ID] = true
		}
		for _, candidate := range candidates {
			if existing[candidate.ID] {
				continue
			}
			data.Alerts = append(data.Alerts, candidate)
			created = append(created, candidate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MarkRead flags an alert as read.
func (s *AlertService) MarkRead(userID, alertID string) error {
	return s.State.Update(userID, func(data *models.UserData) error {
		for i := range data.Alerts {
			if data.Alerts[i].ID == alertID {
				data.Alerts[i].IsRead = true
				return nil
			}
		}
		return fmt.Errorf("alert %s not found", alertID)
	})
}

// Dismiss removes an alert entirely.
func (s *AlertService) Dismiss(userID, alertID string) error {
	return s.State.Update(userID, func(data *models.UserData) error {
		for i := range data.Alerts {
			if data.Alerts[i].ID == alertID {
				data.Alerts = append(data.Alerts[:i], data.Alerts[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("alert %s not found", alertID)
	})
}

// List returns the user's alerts, optionally only unread ones.
func (s *AlertService) List(userID string, unreadOnly bool) []models.NutritionalAlert {
	snapshot := s.State.Snapshot(userID)
	if snapshot == nil {
		return nil
	}
	if !unreadOnly {
		return snapshot.Alerts
	}
	var out []models.NutritionalAlert
	for _, alert := range snapshot.Alerts {
		if !alert.IsRead {
			out = append(out, alert)
		}
	}
	return out
}
