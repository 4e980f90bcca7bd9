package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nutrimind_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu        sync.Mutex
	pushes    int
	lastPush  *models.UserData
	pullData  *models.UserData
	pullFound bool
	pushErr   error
	cleared   []string
}

func (f *fakeRemote) PushSnapshot(ctx context.Context, userID string, data *models.UserData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes++
	f.lastPush = data
	return f.pushErr
}

func (f *fakeRemote) PullSnapshot(ctx context.Context, userID string) (*models.UserData, bool, error) {
	return f.pullData, f.pullFound, nil
}

func (f *fakeRemote) ClearUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, userID)
	return nil
}

func (f *fakeRemote) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes
}

func newSyncFixture(t *testing.T, remote *fakeRemote) (*SyncService, *StateService) {
	t.Helper()
	state := NewStateService()
	svc := NewSyncService(remote, state)
	svc.Debounce = 30 * time.Millisecond
	state.SetOnChange(svc.NotifyChange)

	data := models.NewUserData()
	data.Profile = testProfile()
	state.Install("user-1", data)
	return svc, state
}

func TestBurstOfChangesCollapsesToOnePush(t *testing.T) {
	remote := &fakeRemote{}
	svc, state := newSyncFixture(t, remote)
	defer svc.Stop()

	for i := 0; i < 5; i++ {
		err := state.Update("user-1", func(data *models.UserData) error {
			data.WaterIntake = append(data.WaterIntake, models.WaterIntake{Date: "2026-08-29", Amount: float64(i+1) * 250})
			return nil
		})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return remote.pushCount() == 1 }, time.Second, 5*time.Millisecond)

	// the push must carry the final state of the burst
	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.lastPush.WaterIntake, 5)

	status := svc.Status("user-1")
	assert.False(t, status.Syncing)
	assert.Empty(t, status.LastError)
	assert.False(t, status.LastSyncTime.IsZero())
}

func TestEachChangeRestartsTheDebounceWindow(t *testing.T) {
	remote := &fakeRemote{}
	svc, state := newSyncFixture(t, remote)
	defer svc.Stop()

	touch := func() {
		require.NoError(t, state.Update("user-1", func(data *models.UserData) error { return nil }))
	}

	touch()
	time.Sleep(15 * time.Millisecond)
	touch() // restarts the 30ms window
	time.Sleep(20 * time.Millisecond)

	assert.Zero(t, remote.pushCount())
	require.Eventually(t, func() bool { return remote.pushCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestForceSyncBypassesDebounce(t *testing.T) {
	remote := &fakeRemote{}
	svc, state := newSyncFixture(t, remote)
	defer svc.Stop()

	require.NoError(t, state.Update("user-1", func(data *models.UserData) error { return nil }))
	require.NoError(t, svc.ForceSync("user-1"))
	assert.Equal(t, 1, remote.pushCount())

	// the cancelled timer must not fire a second push
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, remote.pushCount())
}

func TestPushErrorRecordedInStatus(t *testing.T) {
	remote := &fakeRemote{pushErr: errors.New("dynamo down")}
	svc, _ := newSyncFixture(t, remote)
	defer svc.Stop()

	err := svc.ForceSync("user-1")
	require.Error(t, err)
	assert.Contains(t, svc.Status("user-1").LastError, "dynamo down")
}

func TestBroadcastSeesSyncingThenDone(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := newSyncFixture(t, remote)
	defer svc.Stop()

	var mu sync.Mutex
	var seen []bool
	svc.Broadcast = func(userID string, status SyncStatus) {
		mu.Lock()
		seen = append(seen, status.Syncing)
		mu.Unlock()
	}

	require.NoError(t, svc.ForceSync("user-1"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0])
	assert.False(t, seen[1])
}

func TestLoadInstallsRemoteSnapshot(t *testing.T) {
	data := models.NewUserData()
	data.Profile = testProfile()
	remote := &fakeRemote{pullData: data, pullFound: true}

	state := NewStateService()
	svc := NewSyncService(remote, state)

	found, err := svc.Load(context.Background(), "user-2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, state.Exists("user-2"))
}

func TestLoadReportsMissingUser(t *testing.T) {
	remote := &fakeRemote{}
	state := NewStateService()
	svc := NewSyncService(remote, state)

	found, err := svc.Load(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, state.Exists("ghost"))
}

func TestNotifyChangeForUnknownUserIsHarmless(t *testing.T) {
	remote := &fakeRemote{}
	state := NewStateService()
	svc := NewSyncService(remote, state)
	svc.Debounce = 10 * time.Millisecond
	defer svc.Stop()

	svc.NotifyChange("nobody")
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, remote.pushCount())
}
