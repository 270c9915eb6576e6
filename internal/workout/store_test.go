package workout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/2beens/fittracker/internal/blobstore"
	"github.com/2beens/fittracker/internal/telemetry/metrics"
	"github.com/2beens/fittracker/internal/workout"
)

func newTestStore(t *testing.T, blobs *blobstore.Memory, now time.Time) (*workout.Store, *metrics.Manager) {
	t.Helper()
	metricsManager := metrics.NewTestManager()
	analyzer := workout.NewAnalyzer(workout.DefaultCalendar(), fixedClock(now))
	return workout.NewStore(blobs, "", analyzer, metricsManager), metricsManager
}

func TestStore_Load_Statuses(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("connection refused")

	testCases := []struct {
		name           string
		blob           []byte
		getErr         error
		expectedStatus workout.LoadStatus
		expectedCount  int
	}{
		{
			name:           "missing blob",
			getErr:         blobstore.ErrNotFound,
			expectedStatus: workout.LoadStatusEmpty,
		},
		{
			name:           "empty blob",
			blob:           []byte{},
			expectedStatus: workout.LoadStatusEmpty,
		},
		{
			name:           "corrupted blob",
			blob:           []byte(`[{"id": 12`),
			expectedStatus: workout.LoadStatusCorrupted,
		},
		{
			name:           "backend error",
			getErr:         backendErr,
			expectedStatus: workout.LoadStatusUnavailable,
		},
		{
			name:           "valid blob",
			blob:           []byte(`[{"id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","name":"Squat","muscleGroup":"Legs","sets":[],"date":"2024-01-08T00:00:00Z"}]`),
			expectedStatus: workout.LoadStatusLoaded,
			expectedCount:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			blobsMock := NewMockblobStore(ctrl)
			metricsManager := metrics.NewTestManager()
			store := workout.NewStore(blobsMock, "", nil, metricsManager)

			blobsMock.EXPECT().Get(gomock.Any(), workout.DefaultStorageKey).Return(tc.blob, tc.getErr)

			result := store.Load(ctx)
			assert.Equal(t, tc.expectedStatus, result.Status)
			assert.Equal(t, tc.expectedCount, result.Count)
			assert.Equal(t, tc.expectedCount, store.Len())
			assert.NotNil(t, store.Exercises())

			switch tc.expectedStatus {
			case workout.LoadStatusCorrupted:
				assert.Error(t, result.Err)
			case workout.LoadStatusUnavailable:
				assert.ErrorIs(t, result.Err, backendErr)
			default:
				assert.NoError(t, result.Err)
			}

			assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterStoreLoads.WithLabelValues(string(tc.expectedStatus))))
			assert.Equal(t, float64(tc.expectedCount), testutil.ToFloat64(metricsManager.GaugeExercises))
		})
	}
}

func TestStore_Load_ReplacesPreviousList(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	blobsMock := NewMockblobStore(ctrl)
	store := workout.NewStore(blobsMock, "my-key", nil, metrics.NewTestManager())

	blobsMock.EXPECT().Set(gomock.Any(), "my-key", gomock.Any()).Return(nil)
	_, err := store.Add(ctx, workout.NewExercise("Squat", "Legs", nil, time.Now()))
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	blobsMock.EXPECT().Get(gomock.Any(), "my-key").Return([]byte(`not json`), nil)
	result := store.Load(ctx)
	assert.Equal(t, workout.LoadStatusCorrupted, result.Status)
	assert.Equal(t, 0, store.Len())
}

func TestStore_AddAndReload_KeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemory(4)
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	store, metricsManager := newTestStore(t, blobs, now)

	result := store.Load(ctx)
	require.Equal(t, workout.LoadStatusEmpty, result.Status)

	// B is older than A, display order differs from insertion order
	exA := workout.NewExercise("A", "Legs", []workout.Set{workout.NewSet(5, 100, 60)}, now)
	exB := workout.NewExercise("B", "Back", []workout.Set{workout.NewSet(8, 60, 90)}, now.AddDate(0, 0, -3))

	addedA, err := store.Add(ctx, exA)
	require.NoError(t, err)
	assert.Equal(t, exA.ID, addedA.ID)
	addedB, err := store.Add(ctx, exB)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.CounterExercisesAdded))
	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.GaugeExercises))

	reloaded, _ := newTestStore(t, blobs, now)
	result = reloaded.Load(ctx)
	require.Equal(t, workout.LoadStatusLoaded, result.Status)
	require.Equal(t, 2, result.Count)

	exercises := reloaded.Exercises()
	assert.Equal(t, []workout.Exercise{addedA, addedB}, exercises)
	assert.Equal(t, store.Exercises(), exercises)
}

func TestStore_Add_FillsMissingFields(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	store, _ := newTestStore(t, blobstore.NewMemory(4), now)

	added, err := store.Add(ctx, workout.Exercise{
		Name:        "Deadlift",
		MuscleGroup: "Back",
		Sets:        []workout.Set{{Reps: 5, Weight: 140, RestTime: 180}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, added.ID)
	assert.NotEqual(t, uuid.Nil, added.Sets[0].ID)
	assert.True(t, now.Equal(added.Date))

	added, err = store.Add(ctx, workout.Exercise{Name: "Plank", MuscleGroup: "Core"})
	require.NoError(t, err)
	assert.NotNil(t, added.Sets)
}

func TestStore_Add_Invalid(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	blobsMock := NewMockblobStore(ctrl)
	store := workout.NewStore(blobsMock, "", nil, metrics.NewTestManager())

	// no blob store calls expected
	_, err := store.Add(ctx, workout.NewExercise(" ", "Legs", nil, time.Now()))
	assert.ErrorIs(t, err, workout.ErrInvalidExercise)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Add_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, blobstore.NewMemory(4), time.Now())

	ex := workout.NewExercise("Squat", "Legs", nil, time.Now())
	_, err := store.Add(ctx, ex)
	require.NoError(t, err)

	_, err = store.Add(ctx, ex)
	assert.ErrorIs(t, err, workout.ErrDuplicateID)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Add_SaveFailureKeepsMemoryInSync(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	blobsMock := NewMockblobStore(ctrl)
	metricsManager := metrics.NewTestManager()
	store := workout.NewStore(blobsMock, "", nil, metricsManager)

	date := time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC)
	var persisted []byte
	blobsMock.EXPECT().
		Set(gomock.Any(), workout.DefaultStorageKey, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value []byte) error {
			persisted = value
			return nil
		})
	first, err := store.Add(ctx, workout.NewExercise("Squat", "Legs", nil, date))
	require.NoError(t, err)

	diskFullErr := errors.New("no space left on device")
	blobsMock.EXPECT().Set(gomock.Any(), workout.DefaultStorageKey, gomock.Any()).Return(diskFullErr)
	_, err = store.Add(ctx, workout.NewExercise("Bench", "Chest", nil, date.Add(time.Hour)))
	assert.ErrorIs(t, err, diskFullErr)

	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterStoreSaveFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterExercisesAdded))

	inMemory := store.Exercises()
	require.Len(t, inMemory, 1)
	assert.Equal(t, first.ID, inMemory[0].ID)

	decoded, err := workout.DecodeExercises(persisted)
	require.NoError(t, err)
	assert.Equal(t, inMemory, decoded)
}

func TestStore_NilMetricsManager(t *testing.T) {
	ctx := context.Background()
	store := workout.NewStore(blobstore.NewMemory(4), "", nil, nil)

	assert.NotPanics(t, func() {
		result := store.Load(ctx)
		assert.Equal(t, workout.LoadStatusEmpty, result.Status)
	})
	assert.NotPanics(t, func() {
		_, err := store.Add(ctx, workout.NewExercise("Squat", "Legs", nil, time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
	})
	assert.NoError(t, store.Save(ctx))
	assert.Equal(t, 1, store.Len())
}

func TestStore_Save(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	blobsMock := NewMockblobStore(ctrl)
	metricsManager := metrics.NewTestManager()
	store := workout.NewStore(blobsMock, "", nil, metricsManager)

	blobsMock.EXPECT().Set(gomock.Any(), workout.DefaultStorageKey, []byte("[]")).Return(nil)
	require.NoError(t, store.Save(ctx))

	saveErr := errors.New("read-only file system")
	blobsMock.EXPECT().Set(gomock.Any(), workout.DefaultStorageKey, []byte("[]")).Return(saveErr)
	assert.ErrorIs(t, store.Save(ctx), saveErr)
	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterStoreSaveFailures))
}

func TestStore_Queries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	store, _ := newTestStore(t, blobstore.NewMemory(4), now)

	for _, ex := range []workout.Exercise{
		workout.NewExercise("Squat", "Legs", []workout.Set{workout.NewSet(5, 100, 120)}, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)),
		workout.NewExercise("Squat", "Legs", []workout.Set{workout.NewSet(5, 110, 120)}, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		workout.NewExercise("Bench Press", "Chest", []workout.Set{workout.NewSet(10, 60, 90)}, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)),
		workout.NewExercise("Row", "Back", nil, time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)),
	} {
		_, err := store.Add(ctx, ex)
		require.NoError(t, err)
	}

	assert.Len(t, store.History("squat"), 2)
	assert.Equal(t, []string{"Bench Press", "Squat"}, exerciseNames(store.Filtered(workout.FilterThisWeek)))
	assert.Equal(t, []string{"Row"}, exerciseNames(store.Filtered(workout.FilterLastMonth)))
	assert.Equal(t, []string{"Squat", "Squat"}, exerciseNames(store.Search(workout.FilterThisMonth, "SQU")))
	assert.Equal(t, []string{"Bench Press", "Squat"}, exerciseNames(store.Recent(2)))

	weekly := store.WeeklyProgress()
	require.Len(t, weekly, 3)
	assert.Equal(t, 2, weekly[0].TotalWorkouts)
	assert.Equal(t, 1150.0, weekly[0].TotalVolume)
	assert.Equal(t, 500.0, weekly[1].TotalVolume)

	summary := store.Summary()
	assert.Equal(t, 4, summary.TotalWorkouts)
	assert.Equal(t, 3, summary.DistinctNames)

	// returned lists are copies
	exercises := store.Exercises()
	exercises[0].Name = "changed"
	exercises[0].Sets[0].Reps = 99
	fresh := store.Exercises()
	assert.Equal(t, "Squat", fresh[0].Name)
	assert.Equal(t, 5, fresh[0].Sets[0].Reps)
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, blobstore.NewMemory(4), time.Now())

	updates, unsubscribe := store.Subscribe()

	added, err := store.Add(ctx, workout.NewExercise("Squat", "Legs", nil, time.Now()))
	require.NoError(t, err)

	select {
	case got := <-updates:
		assert.Equal(t, added, got)
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}

	unsubscribe()
	// second call is a no-op
	unsubscribe()

	_, ok := <-updates
	assert.False(t, ok)

	_, err = store.Add(ctx, workout.NewExercise("Bench", "Chest", nil, time.Now()))
	require.NoError(t, err)
}

func TestStore_Subscribe_SlowSubscriberDoesNotBlockAdd(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, blobstore.NewMemory(16), time.Now())

	_, unsubscribe := store.Subscribe()
	defer unsubscribe()

	for i := 0; i < 50; i++ {
		_, err := store.Add(ctx, workout.NewExercise("Squat", "Legs", nil, time.Now()))
		require.NoError(t, err)
	}
	assert.Equal(t, 50, store.Len())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, blobstore.NewMemory(64), time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := store.Add(ctx, workout.NewExercise("Squat", "Legs", []workout.Set{workout.DefaultSet()}, time.Now()))
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = store.WeeklyProgress()
				_ = store.Search(workout.FilterAll, "squ")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 80, store.Len())
	weekly := store.WeeklyProgress()
	var total int
	for _, w := range weekly {
		total += w.TotalWorkouts
	}
	assert.Equal(t, 80, total)
}
