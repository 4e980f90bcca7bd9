package services

import (
	"testing"

	"nutrimind_server/models"
	"nutrimind_server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFixture(t *testing.T) (*UserProfileService, *StateService, *fakeRemote) {
	t.Helper()
	remote := &fakeRemote{}
	state := NewStateService()
	syncSvc := NewSyncService(remote, state)
	state.SetOnChange(syncSvc.NotifyChange)
	t.Cleanup(syncSvc.Stop)
	return NewUserProfileService(state, syncSvc), state, remote
}

func onboardingProfile() models.UserProfile {
	return models.UserProfile{
		Name:          "Claire",
		Gender:        models.GenderFemale,
		Age:           30,
		Height:        165,
		Weight:        60,
		ActivityLevel: models.ActivityModerate,
		Goal:          models.GoalLose,
		CookingLevel:  models.CookingIntermediate,
		MealsPerDay:   3,
	}
}

func TestCompleteOnboardingDerivesAndSyncs(t *testing.T) {
	svc, state, remote := newProfileFixture(t)

	profile, err := svc.CompleteOnboarding("user-1", onboardingProfile())
	require.NoError(t, err)

	assert.InDelta(t, 1320.25, profile.BMR, 0.001)
	assert.Equal(t, 60.0, profile.StartWeight)
	assert.NotEmpty(t, profile.StartDate)

	data := state.Snapshot("user-1")
	require.Len(t, data.TrackingData, 1)
	assert.Equal(t, 60.0, data.TrackingData[0].Weight)

	// initial push happens immediately, not behind the debounce
	assert.Equal(t, 1, remote.pushCount())
}

func TestCompleteOnboardingRejectsInvalidProfile(t *testing.T) {
	svc, state, _ := newProfileFixture(t)

	bad := onboardingProfile()
	bad.Gender = "other"
	_, err := svc.CompleteOnboarding("user-1", bad)
	require.Error(t, err)
	assert.False(t, state.Exists("user-1"))
}

func TestUpdateProfilePreservesStartDate(t *testing.T) {
	svc, _, _ := newProfileFixture(t)
	created, err := svc.CompleteOnboarding("user-1", onboardingProfile())
	require.NoError(t, err)

	edited := onboardingProfile()
	edited.Weight = 58
	edited.Goal = models.GoalMaintain
	updated, err := svc.UpdateProfile("user-1", edited)
	require.NoError(t, err)

	assert.Equal(t, created.StartDate, updated.StartDate)
	assert.Equal(t, 60.0, updated.StartWeight)
	// maintain goal: target equals TDEE
	assert.InDelta(t, updated.TDEE, updated.TargetCalories, 0.001)
}

func TestRecordWeightUpsertsAndRecomputes(t *testing.T) {
	svc, state, _ := newProfileFixture(t)
	_, err := svc.CompleteOnboarding("user-1", onboardingProfile())
	require.NoError(t, err)

	date := utils.DateKey("2026-08-29")
	require.NoError(t, svc.RecordWeight("user-1", date, 59))
	require.NoError(t, svc.RecordWeight("user-1", date, 58.5)) // same day, replaces

	data := state.Snapshot("user-1")
	var entries int
	for _, entry := range data.TrackingData {
		if entry.Date == string(date) {
			entries++
			assert.Equal(t, 58.5, entry.Weight)
		}
	}
	assert.Equal(t, 1, entries)
	assert.Equal(t, 58.5, data.Profile.Weight)

	// BMR follows the new weight: 10 kg delta moves BMR by 10 per kg
	expected := CalculateMetabolism(models.GenderFemale, 30, 165, 58.5, models.ActivityModerate, models.GoalLose)
	assert.Equal(t, expected.BMR, data.Profile.BMR)

	assert.Error(t, svc.RecordWeight("user-1", date, -2))
	assert.Error(t, svc.RecordWeight("user-1", "29/08/2026", 60))
}

func TestResetProfileClearsLocalAndRemote(t *testing.T) {
	svc, state, remote := newProfileFixture(t)
	_, err := svc.CompleteOnboarding("user-1", onboardingProfile())
	require.NoError(t, err)

	require.NoError(t, svc.ResetProfile("user-1"))
	assert.False(t, state.Exists("user-1"))
	assert.Equal(t, []string{"user-1"}, remote.cleared)
	assert.Nil(t, svc.GetProfile("user-1"))
}
