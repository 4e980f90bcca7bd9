package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"nutrimind_server/models"
	"nutrimind_server/utils"

	"github.com/go-playground/validator/v10"
)

// UserProfileService owns the onboarding and profile lifecycle. Every
// write recomputes the derived metabolic fields before the state change
// is committed.
type UserProfileService struct {
	State    *StateService
	Sync     *SyncService
	Validate *validator.Validate
}

// NewUserProfileService wires the profile service with a fresh validator.
func NewUserProfileService(state *StateService, sync *SyncService) *UserProfileService {
	return &UserProfileService{
		State:    state,
		Sync:     sync,
		Validate: validator.New(),
	}
}

// CompleteOnboarding creates the user's initial state from a validated
// profile and pushes it immediately so a fresh device can pull it back.
func (s *UserProfileService) CompleteOnboarding(userID string, profile models.UserProfile) (*models.UserProfile, error) {
	if err := s.Validate.Struct(profile); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	profile.UserID = userID
	ApplyMetabolism(&profile)
	if profile.StartDate == "" {
		profile.StartDate = string(utils.TodayKey())
	}
	if profile.StartWeight == 0 {
		profile.StartWeight = profile.Weight
	}

	data := models.NewUserData()
	data.Profile = &profile
	data.TrackingData = append(data.TrackingData, models.TrackingEntry{
		Date:   profile.StartDate,
		Weight: profile.Weight,
	})
	s.State.Install(userID, data)

	if err := s.Sync.ForceSync(userID); err != nil {
		// state is installed either way; the debounced path will retry
		// on the next change
		log.Printf("⚠️ Initial sync failed for user %s: %v", userID, err)
	}

	log.Printf("✅ Onboarding completed for user %s (target %0.f kcal)", userID, profile.TargetCalories)
	return &profile, nil
}

// UpdateProfile applies edits to the stored profile, recomputing derived
// fields. The user ID and start date are preserved.
func (s *UserProfileService) UpdateProfile(userID string, updated models.UserProfile) (*models.UserProfile, error) {
	if err := s.Validate.Struct(updated); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	var result models.UserProfile
	err := s.State.Update(userID, func(data *models.UserData) error {
		if data.Profile == nil {
			return fmt.Errorf("user %s has no profile", userID)
		}
		updated.UserID = userID
		updated.StartDate = data.Profile.StartDate
		if updated.StartWeight == 0 {
			updated.StartWeight = data.Profile.StartWeight
		}
		ApplyMetabolism(&updated)
		data.Profile = &updated
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordWeight stores a weight measurement for a date, updates the
// profile's current weight and recomputes the metabolic targets.
func (s *UserProfileService) RecordWeight(userID string, date utils.DateKey, weightKg float64) error {
	if weightKg <= 0 {
		return fmt.Errorf("weight must be positive, got %v", weightKg)
	}
	if !date.Valid() {
		return fmt.Errorf("invalid date %q", date)
	}

	return s.State.Update(userID, func(data *models.UserData) error {
		if data.Profile == nil {
			return fmt.Errorf("user %s has no profile", userID)
		}

		replaced := false
		for i := range data.TrackingData {
			if data.TrackingData[i].Date == string(date) {
				data.TrackingData[i].Weight = weightKg
				replaced = true
				break
			}
		}
		if !replaced {
			data.TrackingData = append(data.TrackingData, models.TrackingEntry{Date: string(date), Weight: weightKg})
		}

		data.Profile.Weight = weightKg
		ApplyMetabolism(data.Profile)
		return nil
	})
}

// GetProfile returns a copy of the user's profile, or nil.
func (s *UserProfileService) GetProfile(userID string) *models.UserProfile {
	snapshot := s.State.Snapshot(userID)
	if snapshot == nil {
		return nil
	}
	return snapshot.Profile
}

// ResetProfile wipes the user's state locally and remotely.
func (s *UserProfileService) ResetProfile(userID string) error {
	s.State.Reset(userID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Sync.Remote.ClearUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear remote data: %w", err)
	}
	log.Printf("🧹 Reset all data for user %s", userID)
	return nil
}
