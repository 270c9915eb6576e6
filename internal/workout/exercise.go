package workout

import (
	"time"

	"github.com/google/uuid"
)

// Exercise is one logged entry: a named movement done on a given date, with its sets.
type Exercise struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" validate:"required,notblank"`
	MuscleGroup string    `json:"muscleGroup"`
	Sets        []Set     `json:"sets" validate:"dive"`
	Date        time.Time `json:"date"`
}

type Set struct {
	ID       uuid.UUID `json:"id"`
	Reps     int       `json:"reps" validate:"gte=0"`
	Weight   float64   `json:"weight" validate:"gte=0"`
	RestTime int       `json:"restTime" validate:"gte=0"`
}

const (
	DefaultSetReps     = 10
	DefaultSetWeight   = 0
	DefaultSetRestTime = 60
)

// NewExercise creates an exercise with a fresh id. Zero date means now.
func NewExercise(name, muscleGroup string, sets []Set, date time.Time) Exercise {
	if date.IsZero() {
		date = time.Now()
	}
	if sets == nil {
		sets = []Set{}
	}
	return Exercise{
		ID:          uuid.New(),
		Name:        name,
		MuscleGroup: muscleGroup,
		Sets:        sets,
		Date:        date,
	}
}

func NewSet(reps int, weight float64, restTime int) Set {
	return Set{
		ID:       uuid.New(),
		Reps:     reps,
		Weight:   weight,
		RestTime: restTime,
	}
}

// DefaultSet is what a new, empty exercise form starts with.
func DefaultSet() Set {
	return NewSet(DefaultSetReps, DefaultSetWeight, DefaultSetRestTime)
}

// NextSet returns a copy of the last set (with its own id), or DefaultSet if there are no sets.
func NextSet(sets []Set) Set {
	if len(sets) == 0 {
		return DefaultSet()
	}
	last := sets[len(sets)-1]
	return NewSet(last.Reps, last.Weight, last.RestTime)
}

func (s Set) Volume() float64 {
	return float64(s.Reps) * s.Weight
}

func (e Exercise) Volume() float64 {
	var volume float64
	for _, s := range e.Sets {
		volume += s.Volume()
	}
	return volume
}

func (e Exercise) TotalReps() int {
	var reps int
	for _, s := range e.Sets {
		reps += s.Reps
	}
	return reps
}

func (e Exercise) clone() Exercise {
	c := e
	if e.Sets != nil {
		c.Sets = make([]Set, len(e.Sets))
		copy(c.Sets, e.Sets)
	}
	return c
}

func cloneExercises(exercises []Exercise) []Exercise {
	cloned := make([]Exercise, len(exercises))
	for i := range exercises {
		cloned[i] = exercises[i].clone()
	}
	return cloned
}

var muscleGroups = []string{
	"Chest",
	"Back",
	"Shoulders",
	"Arms",
	"Legs",
	"Core",
	"Cardio",
}

// MuscleGroups lists the labels offered when logging an exercise.
// Stored exercises may carry any other label too.
func MuscleGroups() []string {
	groups := make([]string, len(muscleGroups))
	copy(groups, muscleGroups)
	return groups
}

func IsKnownMuscleGroup(group string) bool {
	for _, mg := range muscleGroups {
		if foldEqual(mg, group) {
			return true
		}
	}
	return false
}
