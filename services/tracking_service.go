package services

import (
	"fmt"

	"nutrimind_server/models"
	"nutrimind_server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TrackingService manages the daily logs: water, body measurements,
// activities and completed-meal flags. All collections are keyed by local
// date and upserts replace the record for that date.
type TrackingService struct {
	State    *StateService
	Validate *validator.Validate
}

// NewTrackingService wires the tracking service.
func NewTrackingService(state *StateService) *TrackingService {
	return &TrackingService{State: state, Validate: validator.New()}
}

// UpsertWater replaces the water record for the entry's date.
func (s *TrackingService) UpsertWater(userID string, entry models.WaterIntake) error {
	if err := s.Validate.Struct(entry); err != nil {
		return fmt.Errorf("invalid water intake: %w", err)
	}
	if !utils.DateKey(entry.Date).Valid() {
		return fmt.Errorf("invalid date %q", entry.Date)
	}

	return s.State.Update(userID, func(data *models.UserData) error {
		for i := range data.WaterIntake {
			if data.WaterIntake[i].Date == entry.Date {
				data.WaterIntake[i] = entry
				return nil
			}
		}
		data.WaterIntake = append(data.WaterIntake, entry)
		return nil
	})
}

// UpsertMeasurement replaces the body measurement for the entry's date.
func (s *TrackingService) UpsertMeasurement(userID string, entry models.BodyMeasurement) error {
	if !utils.DateKey(entry.Date).Valid() {
		return fmt.Errorf("invalid date %q", entry.Date)
	}

	return s.State.Update(userID, func(data *models.UserData) error {
		for i := range data.BodyMeasurements {
			if data.BodyMeasurements[i].Date == entry.Date {
				data.BodyMeasurements[i] = entry
				return nil
			}
		}
		data.BodyMeasurements = append(data.BodyMeasurements, entry)
		return nil
	})
}

// AddActivity logs a new exercise session and returns it with its ID.
func (s *TrackingService) AddActivity(userID string, activity models.Activity) (models.Activity, error) {
	if err := s.Validate.Struct(activity); err != nil {
		return models.Activity{}, fmt.Errorf("invalid activity: %w", err)
	}
	if !utils.DateKey(activity.Date).Valid() {
		return models.Activity{}, fmt.Errorf("invalid date %q", activity.Date)
	}

	activity.ID = uuid.NewString()
	err := s.State.Update(userID, func(data *models.UserData) error {
		data.Activities = append(data.Activities, activity)
		return nil
	})
	if err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

// UpdateActivity replaces an existing activity by ID.
func (s *TrackingService) UpdateActivity(userID string, activity models.Activity) error {
	if activity.ID == "" {
		return fmt.Errorf("activity id is required")
	}
	if err := s.Validate.Struct(activity); err != nil {
		return fmt.Errorf("invalid activity: %w", err)
	}

	return s.State.Update(userID, func(data *models.UserData) error {
		for i := range data.Activities {
			if data.Activities[i].ID == activity.ID {
				data.Activities[i] = activity
				return nil
			}
		}
		return fmt.Errorf("activity %s not found", activity.ID)
	})
}

// DeleteActivity removes an activity by ID.
func (s *TrackingService) DeleteActivity(userID, activityID string) error {
	return s.State.Update(userID, func(data *models.UserData) error {
		for i := range data.Activities {
			if data.Activities[i].ID == activityID {
				data.Activities = append(data.Activities[:i], data.Activities[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("activity %s not found", activityID)
	})
}

// SetMealCompleted marks or unmarks one meal as consumed on a date.
func (s *TrackingService) SetMealCompleted(userID string, date utils.DateKey, mealName string, completed bool) error {
	if !date.Valid() {
		return fmt.Errorf("invalid date %q", date)
	}
	if mealName == "" {
		return fmt.Errorf("meal name is required")
	}

	return s.State.Update(userID, func(data *models.UserData) error {
		names := data.CompletedMeals[string(date)]
		idx := -1
		for i, name := range names {
			if name == mealName {
				idx = i
				break
			}
		}

		switch {
		case completed && idx < 0:
			data.CompletedMeals[string(date)] = append(names, mealName)
		case !completed && idx >= 0:
			names = append(names[:idx], names[idx+1:]...)
			if len(names) == 0 {
				delete(data.CompletedMeals, string(date))
			} else {
				data.CompletedMeals[string(date)] = names
			}
		}
		return nil
	})
}

// CompletedMeals returns the meal names consumed on a date.
func (s *TrackingService) CompletedMeals(userID string, date utils.DateKey) []string {
	snapshot := s.State.Snapshot(userID)
	if snapshot == nil {
		return nil
	}
	return snapshot.CompletedMeals[string(date)]
}

// WaterForDate returns the water record for a date, or a zero record with
// the date filled in.
func (s *TrackingService) WaterForDate(userID string, date utils.DateKey) models.WaterIntake {
	snapshot := s.State.Snapshot(userID)
	if snapshot != nil {
		for _, entry := range snapshot.WaterIntake {
			if entry.Date == string(date) {
				return entry
			}
		}
	}
	return models.WaterIntake{Date: string(date)}
}

// Activities returns all logged activities, optionally filtered by date.
func (s *TrackingService) Activities(userID string, date utils.DateKey) []models.Activity {
	snapshot := s.State.Snapshot(userID)
	if snapshot == nil {
		return nil
	}
	if date == "" {
		return snapshot.Activities
	}
	var out []models.Activity
	for _, activity := range snapshot.Activities {
		if activity.Date == string(date) {
			out = append(out, activity)
		}
	}
	return out
}

// Measurements returns all body measurements.
func (s *TrackingService) Measurements(userID string) []models.BodyMeasurement {
	snapshot := s.State.Snapshot(userID)
	if snapshot == nil {
		return nil
	}
	return snapshot.BodyMeasurements
}
