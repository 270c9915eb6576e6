package workout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fittracker/internal/blobstore"
	"github.com/2beens/fittracker/internal/telemetry/metrics"
	"github.com/2beens/fittracker/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=workout_test

const (
	DefaultStorageKey = "SavedExercises"

	subscriberBufferSize = 16
)

var ErrDuplicateID = errors.New("exercise with the same id already exists")

type blobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type LoadStatus string

const (
	// LoadStatusLoaded means the persisted list was read and decoded.
	LoadStatusLoaded LoadStatus = "loaded"
	// LoadStatusEmpty means nothing was persisted yet.
	LoadStatusEmpty LoadStatus = "empty"
	// LoadStatusCorrupted means the blob exists but could not be decoded.
	LoadStatusCorrupted LoadStatus = "corrupted"
	// LoadStatusUnavailable means the blob store could not be read.
	LoadStatusUnavailable LoadStatus = "unavailable"
)

// LoadResult reports how Load went. Any status other than LoadStatusLoaded
// leaves the store with an empty list, Err holds the cause if there is one.
type LoadResult struct {
	Status LoadStatus
	Count  int
	Err    error
}

// Store owns the exercise log of the process. The in-memory list and the
// persisted blob are the same after every call; an add that cannot be written
// is not applied.
type Store struct {
	blobs          blobStore
	key            string
	analyzer       *Analyzer
	metricsManager *metrics.Manager

	mutex     sync.RWMutex
	exercises []Exercise

	subsMutex   sync.Mutex
	nextSubID   int
	subscribers map[int]chan Exercise
}

func NewStore(
	blobs blobStore,
	key string,
	analyzer *Analyzer,
	metricsManager *metrics.Manager,
) *Store {
	if key == "" {
		key = DefaultStorageKey
	}
	if analyzer == nil {
		analyzer = NewAnalyzer(DefaultCalendar(), nil)
	}
	if metricsManager == nil {
		// unexported registry, the metrics are recorded but never scraped
		metricsManager = metrics.NewManager("fittracker", "workout_store", prometheus.NewRegistry())
	}
	return &Store{
		blobs:          blobs,
		key:            key,
		analyzer:       analyzer,
		metricsManager: metricsManager,
		exercises:      []Exercise{},
		subscribers:    make(map[int]chan Exercise),
	}
}

// Load replaces the in-memory list with the persisted one.
// It never fails: a missing, unreadable or corrupted blob starts the log fresh.
func (s *Store) Load(ctx context.Context) LoadResult {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workout.load")
	defer span.End()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := s.load(ctx)
	span.SetAttributes(attribute.String("status", string(result.Status)))
	span.SetAttributes(attribute.Int("count", result.Count))

	switch result.Status {
	case LoadStatusLoaded:
		log.Debugf("workout store: loaded %d exercises from [%s]", result.Count, s.key)
	case LoadStatusEmpty:
		log.Infof("workout store: no exercises saved under [%s] yet, starting empty", s.key)
	default:
		log.Warnf("workout store: load [%s] %s, starting empty: %s", s.key, result.Status, result.Err)
	}

	s.metricsManager.CounterStoreLoads.With(prometheus.Labels{
		"status": string(result.Status),
	}).Inc()
	s.metricsManager.GaugeExercises.Set(float64(len(s.exercises)))

	return result
}

func (s *Store) load(ctx context.Context) LoadResult {
	s.exercises = []Exercise{}

	data, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return LoadResult{Status: LoadStatusEmpty}
		}
		return LoadResult{Status: LoadStatusUnavailable, Err: err}
	}
	if len(data) == 0 {
		return LoadResult{Status: LoadStatusEmpty}
	}

	exercises, err := DecodeExercises(data)
	if err != nil {
		return LoadResult{Status: LoadStatusCorrupted, Err: err}
	}

	s.exercises = exercises
	return LoadResult{Status: LoadStatusLoaded, Count: len(exercises)}
}

// Save writes the current list over the persisted blob.
func (s *Store) Save(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workout.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.write(ctx, s.exercises)
}

// Add appends the exercise to the log and persists the whole list.
// Missing ids and a missing date are filled in; the stored exercise is returned.
func (s *Store) Add(ctx context.Context, exercise Exercise) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workout.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercise = s.prepare(exercise)
	span.SetAttributes(attribute.String("exercise.id", exercise.ID.String()))
	span.SetAttributes(attribute.String("exercise.name", exercise.Name))

	if err := Validate(exercise); err != nil {
		return Exercise{}, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, ex := range s.exercises {
		if ex.ID == exercise.ID {
			return Exercise{}, fmt.Errorf("%w: %s", ErrDuplicateID, exercise.ID)
		}
	}

	updated := make([]Exercise, len(s.exercises), len(s.exercises)+1)
	copy(updated, s.exercises)
	updated = append(updated, exercise)

	if err := s.write(ctx, updated); err != nil {
		return Exercise{}, err
	}
	s.exercises = updated

	s.metricsManager.CounterExercisesAdded.Inc()
	s.metricsManager.GaugeExercises.Set(float64(len(s.exercises)))
	s.notify(exercise)

	return exercise.clone(), nil
}

func (s *Store) prepare(exercise Exercise) Exercise {
	exercise = exercise.clone()
	if exercise.ID == uuid.Nil {
		exercise.ID = uuid.New()
	}
	if exercise.Date.IsZero() {
		exercise.Date = s.analyzer.now()
	}
	// drop the monotonic reading so the stored value equals the reloaded one
	exercise.Date = exercise.Date.Round(0)
	if exercise.Sets == nil {
		exercise.Sets = []Set{}
	}
	for i := range exercise.Sets {
		if exercise.Sets[i].ID == uuid.Nil {
			exercise.Sets[i].ID = uuid.New()
		}
	}
	return exercise
}

// write must be called with the write lock held.
func (s *Store) write(ctx context.Context, exercises []Exercise) error {
	defer func(begin time.Time) {
		s.metricsManager.HistStoreSaveDuration.Observe(time.Since(begin).Seconds())
	}(time.Now())

	data, err := EncodeExercises(exercises)
	if err != nil {
		s.metricsManager.CounterStoreSaveFailures.Inc()
		log.Errorf("workout store: encode %d exercises: %s", len(exercises), err)
		return fmt.Errorf("encode exercises: %w", err)
	}

	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		s.metricsManager.CounterStoreSaveFailures.Inc()
		log.Errorf("workout store: save %d exercises to [%s]: %s", len(exercises), s.key, err)
		return fmt.Errorf("save exercises: %w", err)
	}

	log.Tracef("workout store: saved %d exercises, %d bytes", len(exercises), len(data))
	return nil
}

// Subscribe returns a channel receiving every exercise added from now on, and
// a func to stop the subscription. Notifications are dropped for a subscriber
// that does not keep up.
func (s *Store) Subscribe() (<-chan Exercise, func()) {
	ch := make(chan Exercise, subscriberBufferSize)

	s.subsMutex.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subsMutex.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMutex.Lock()
			delete(s.subscribers, id)
			close(ch)
			s.subsMutex.Unlock()
		})
	}
}

func (s *Store) notify(exercise Exercise) {
	s.subsMutex.Lock()
	defer s.subsMutex.Unlock()

	for id, ch := range s.subscribers {
		select {
		case ch <- exercise.clone():
		default:
			log.Debugf("workout store: subscriber %d is full, dropping notification for %s", id, exercise.ID)
		}
	}
}

// Exercises returns the whole log in insertion order.
func (s *Store) Exercises() []Exercise {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return cloneExercises(s.exercises)
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.exercises)
}

func (s *Store) History(name string) []Exercise {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.analyzer.History(s.exercises, name)
}

func (s *Store) Filtered(filter DateFilter) []Exercise {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.analyzer.Filter(s.exercises, filter)
}

// Search narrows the filtered view down to names containing query.
func (s *Store) Search(filter DateFilter, query string) []Exercise {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.analyzer.Search(s.analyzer.Filter(s.exercises, filter), query)
}

func (s *Store) WeeklyProgress() []WeeklyProgress {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.analyzer.WeeklyProgress(s.exercises)
}

func (s *Store) Recent(limit int) []Exercise {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.analyzer.Recent(s.exercises, limit)
}

func (s *Store) Summary() Summary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.analyzer.Summary(s.exercises)
}
