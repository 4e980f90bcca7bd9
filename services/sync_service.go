package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"nutrimind_server/models"
	"nutrimind_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// defaultSyncDebounce batches rapid successive mutations into one remote
// push. Each new change restarts the window, so only the final state of a
// burst is written.
const defaultSyncDebounce = time.Second

// RemoteStore mirrors a user's full state to durable storage. Pushes are
// last-writer-wins whole snapshots.
type RemoteStore interface {
	PushSnapshot(ctx context.Context, userID string, data *models.UserData) error
	PullSnapshot(ctx context.Context, userID string) (*models.UserData, bool, error)
	ClearUser(ctx context.Context, userID string) error
}

// SyncStatus is the per-user view broadcast to connected clients.
type SyncStatus struct {
	LastSyncTime time.Time `json:"lastSyncTime"`
	Syncing      bool      `json:"syncing"`
	LastError    string    `json:"lastError,omitempty"`
}

// SyncService debounces state changes and pushes whole snapshots to the
// remote store. One timer per user; ForceSync bypasses the window.
type SyncService struct {
	Remote    RemoteStore
	State     *StateService
	Debounce  time.Duration
	Broadcast func(userID string, status SyncStatus)

	mu     sync.Mutex
	timers map[string]*time.Timer
	status map[string]SyncStatus
}

// NewSyncService wires the coordinator with the default debounce window.
func NewSyncService(remote RemoteStore, state *StateService) *SyncService {
	return &SyncService{
		Remote:   remote,
		State:    state,
		Debounce: defaultSyncDebounce,
		timers:   make(map[string]*time.Timer),
		status:   make(map[string]SyncStatus),
	}
}

// NotifyChange schedules a push for the user, restarting the debounce
// window if one is already pending. Registered as the state change hook.
func (s *SyncService) NotifyChange(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[userID]; ok {
		timer.Stop()
	}
	s.timers[userID] = time.AfterFunc(s.Debounce, func() {
		s.flush(userID)
	})
}

// ForceSync pushes immediately, cancelling any pending debounce timer.
func (s *SyncService) ForceSync(userID string) error {
	s.mu.Lock()
	if timer, ok := s.timers[userID]; ok {
		timer.Stop()
		delete(s.timers, userID)
	}
	s.mu.Unlock()

	return s.flush(userID)
}

func (s *SyncService) flush(userID string) error {
	snapshot := s.State.Snapshot(userID)
	if snapshot == nil {
		return nil
	}

	s.setStatus(userID, func(st *SyncStatus) { st.Syncing = true })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := s.Remote.PushSnapshot(ctx, userID, snapshot)

	s.setStatus(userID, func(st *SyncStatus) {
		st.Syncing = false
		if err != nil {
			st.LastError = err.Error()
		} else {
			st.LastError = ""
			st.LastSyncTime = time.Now()
		}
	})

	if err != nil {
		log.Printf("❌ Sync push failed for user %s: %v", userID, err)
		return err
	}
	return nil
}

// Load pulls the user's remote snapshot into memory. Returns false when
// nothing is stored yet, which means the user still needs onboarding.
func (s *SyncService) Load(ctx context.Context, userID string) (bool, error) {
	data, found, err := s.Remote.PullSnapshot(ctx, userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	s.State.Install(userID, data)
	s.setStatus(userID, func(st *SyncStatus) { st.LastSyncTime = time.Now() })
	return true, nil
}

// Status returns the user's current sync status.
func (s *SyncService) Status(userID string) SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[userID]
}

// Stop cancels all pending timers. Pending changes are not flushed.
func (s *SyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, timer := range s.timers {
		timer.Stop()
		delete(s.timers, userID)
	}
}

func (s *SyncService) setStatus(userID string, apply func(*SyncStatus)) {
	s.mu.Lock()
	st := s.status[userID]
	apply(&st)
	s.status[userID] = st
	s.mu.Unlock()

	if s.Broadcast != nil {
		s.Broadcast(userID, st)
	}
}

// ---- DynamoDB remote store ----

// DynamoStore persists snapshots across the per-resource tables. Each
// collection is replaced wholesale on push: existing rows are deleted and
// the snapshot's rows written, so remote state always matches memory.
type DynamoStore struct {
	Dynamo *DynamoService
}

// NewDynamoStore wraps the shared DynamoDB client.
func NewDynamoStore(dynamo *DynamoService) *DynamoStore {
	return &DynamoStore{Dynamo: dynamo}
}

type mealPlanRow struct {
	UserID     string             `dynamodbav:"userId"`
	WeekNumber int                `dynamodbav:"weekNumber"`
	Plan       []models.DailyPlan `dynamodbav:"plan"`
}

type trackingRow struct {
	UserID string `dynamodbav:"userId"`
	models.TrackingEntry
}

type completedMealsRow struct {
	UserID string   `dynamodbav:"userId"`
	Date   string   `dynamodbav:"date"`
	Meals  []string `dynamodbav:"meals"`
}

type waterRow struct {
	UserID string `dynamodbav:"userId"`
	models.WaterIntake
}

type measurementRow struct {
	UserID string `dynamodbav:"userId"`
	models.BodyMeasurement
}

type alertRow struct {
	UserID string `dynamodbav:"userId"`
	models.NutritionalAlert
}

type activityRow struct {
	UserID string `dynamodbav:"userId"`
	models.Activity
}

type collectionSpec struct {
	table   string
	sortKey string
}

var snapshotCollections = []collectionSpec{
	{models.MealPlansTable, "weekNumber"},
	{models.TrackingEntriesTable, "date"},
	{models.CompletedMealsTable, "date"},
	{models.WaterIntakeTable, "date"},
	{models.BodyMeasurementsTable, "date"},
	{models.AlertsTable, "alertId"},
	{models.ActivitiesTable, "activityId"},
}

// PushSnapshot writes the profile and replaces every collection.
func (d *DynamoStore) PushSnapshot(ctx context.Context, userID string, data *models.UserData) error {
	if data.Profile != nil {
		profile := *data.Profile
		profile.UserID = userID
		if err := d.Dynamo.PutItem(ctx, models.UserProfilesTable, profile); err != nil {
			return err
		}
	}

	rows := map[string][]any{
		models.MealPlansTable:        {},
		models.TrackingEntriesTable:  {},
		models.CompletedMealsTable:   {},
		models.WaterIntakeTable:      {},
		models.BodyMeasurementsTable: {},
		models.AlertsTable:           {},
		models.ActivitiesTable:       {},
	}
	for _, plan := range data.MealPlans {
		rows[models.MealPlansTable] = append(rows[models.MealPlansTable], mealPlanRow{UserID: userID, WeekNumber: plan.WeekNumber, Plan: plan.Plan})
	}
	for _, entry := range data.TrackingData {
		rows[models.TrackingEntriesTable] = append(rows[models.TrackingEntriesTable], trackingRow{UserID: userID, TrackingEntry: entry})
	}
	for date, meals := range data.CompletedMeals {
		rows[models.CompletedMealsTable] = append(rows[models.CompletedMealsTable], completedMealsRow{UserID: userID, Date: date, Meals: meals})
	}
	for _, water := range data.WaterIntake {
		rows[models.WaterIntakeTable] = append(rows[models.WaterIntakeTable], waterRow{UserID: userID, WaterIntake: water})
	}
	for _, measurement := range data.BodyMeasurements {
		rows[models.BodyMeasurementsTable] = append(rows[models.BodyMeasurementsTable], measurementRow{UserID: userID, BodyMeasurement: measurement})
	}
	for _, alert := range data.Alerts {
		rows[models.AlertsTable] = append(rows[models.AlertsTable], alertRow{UserID: userID, NutritionalAlert: alert})
	}
	for _, activity := range data.Activities {
		rows[models.ActivitiesTable] = append(rows[models.ActivitiesTable], activityRow{UserID: userID, Activity: activity})
	}

	for _, spec := range snapshotCollections {
		if err := d.replaceCollection(ctx, spec, userID, rows[spec.table]); err != nil {
			return err
		}
	}
	return nil
}

// replaceCollection deletes the user's existing rows and writes the new
// ones in one pass of batch requests.
func (d *DynamoStore) replaceCollection(ctx context.Context, spec collectionSpec, userID string, items []any) error {
	existing, err := d.queryUserRows(ctx, spec.table, userID)
	if err != nil {
		return err
	}

	var requests []types.WriteRequest
	for _, item := range existing {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"userId":     &types.AttributeValueMemberS{Value: userID},
					spec.sortKey: item[spec.sortKey],
				},
			},
		})
	}
	for _, item := range items {
		marshaled, err := attributevalue.MarshalMap(item)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: marshaled},
		})
	}

	if len(requests) == 0 {
		return nil
	}
	return d.Dynamo.BatchWriteItems(ctx, spec.table, requests)
}

func (d *DynamoStore) queryUserRows(ctx context.Context, table, userID string) ([]map[string]types.AttributeValue, error) {
	return d.Dynamo.QueryItems(ctx, table, "userId = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}, nil, 0)
}

// PullSnapshot loads the user's full remote state. A missing profile row
// means the user has never synced, reported as found == false.
func (d *DynamoStore) PullSnapshot(ctx context.Context, userID string) (*models.UserData, bool, error) {
	profileItem, err := d.Dynamo.GetItem(ctx, models.UserProfilesTable, map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	// legacy rows written without a userId attribute are unusable
	if utils.ExtractString(profileItem, "userId") == "" {
		return nil, false, nil
	}

	data := models.NewUserData()
	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(profileItem, &profile); err != nil {
		return nil, false, err
	}
	data.Profile = &profile

	planItems, err := d.queryUserRows(ctx, models.MealPlansTable, userID)
	if err != nil {
		return nil, false, err
	}
	// legacy rows may carry weekNumber as a string attribute, so sort on
	// the extracted value instead of trusting unmarshal order
	sort.SliceStable(planItems, func(i, j int) bool {
		return utils.ExtractNumber(planItems[i], "weekNumber", 0) < utils.ExtractNumber(planItems[j], "weekNumber", 0)
	})
	for _, item := range planItems {
		var row mealPlanRow
		if err := attributevalue.UnmarshalMap(item, &row); err != nil {
			return nil, false, err
		}
		data.MealPlans = append(data.MealPlans, models.WeeklyPlan{WeekNumber: row.WeekNumber, Plan: row.Plan})
	}

	if err := d.loadCollection(ctx, models.TrackingEntriesTable, userID, &data.TrackingData); err != nil {
		return nil, false, err
	}

	completedItems, err := d.queryUserRows(ctx, models.CompletedMealsTable, userID)
	if err != nil {
		return nil, false, err
	}
	for _, item := range completedItems {
		var row completedMealsRow
		if err := attributevalue.UnmarshalMap(item, &row); err != nil {
			return nil, false, err
		}
		data.CompletedMeals[row.Date] = row.Meals
	}

	if err := d.loadCollection(ctx, models.WaterIntakeTable, userID, &data.WaterIntake); err != nil {
		return nil, false, err
	}
	if err := d.loadCollection(ctx, models.BodyMeasurementsTable, userID, &data.BodyMeasurements); err != nil {
		return nil, false, err
	}
	if err := d.loadCollection(ctx, models.AlertsTable, userID, &data.Alerts); err != nil {
		return nil, false, err
	}
	if err := d.loadCollection(ctx, models.ActivitiesTable, userID, &data.Activities); err != nil {
		return nil, false, err
	}

	return data, true, nil
}

func (d *DynamoStore) loadCollection(ctx context.Context, table, userID string, out any) error {
	items, err := d.queryUserRows(ctx, table, userID)
	if err != nil {
		return err
	}
	return attributevalue.UnmarshalListOfMaps(items, out)
}

// ClearUser removes the profile and every collection row for the user.
func (d *DynamoStore) ClearUser(ctx context.Context, userID string) error {
	if err := d.Dynamo.DeleteItem(ctx, models.UserProfilesTable, map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}); err != nil {
		return err
	}

	for _, spec := range snapshotCollections {
		if err := d.replaceCollection(ctx, spec, userID, nil); err != nil {
			return err
		}
	}
	return nil
}
