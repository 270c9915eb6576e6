package workout

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittracker/internal/telemetry/tracing"
	"github.com/2beens/fittracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workout_test

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

type exerciseStore interface {
	Add(ctx context.Context, exercise Exercise) (Exercise, error)
	Search(filter DateFilter, query string) []Exercise
	Recent(limit int) []Exercise
	History(name string) []Exercise
	WeeklyProgress() []WeeklyProgress
	Summary() Summary
}

type AddExerciseRequest struct {
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscleGroup"`
	Sets        []Set     `json:"sets"`
	Date        time.Time `json:"date"`
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
	Total     int        `json:"total"`
}

type DateFilterInfo struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

type Handler struct {
	store exerciseStore
}

func NewHandler(store exerciseStore) *Handler {
	return &Handler{
		store: store,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.add")
	defer span.End()

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var addReq AddExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Tracef("add exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed, invalid body", http.StatusBadRequest)
		return
	}

	exercise := Exercise{
		Name:        addReq.Name,
		MuscleGroup: addReq.MuscleGroup,
		Sets:        addReq.Sets,
		Date:        addReq.Date,
	}
	if err := Validate(exercise); err != nil {
		log.Tracef("add exercise, validation: %s", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.store.Add(ctx, exercise)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidExercise):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrDuplicateID):
			http.Error(w, "exercise already exists", http.StatusConflict)
		default:
			log.Errorf("failed to add exercise [%s] [%s]: %s", exercise.Name, exercise.MuscleGroup, err)
			http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		}
		return
	}

	span.SetAttributes(attribute.String("exercise.id", added.ID.String()))
	log.Debugf("new exercise added: %s [%s]", added.ID, added.Name)
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.list")
	defer span.End()

	filter, err := ParseDateFilter(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	query := r.URL.Query().Get("q")
	span.SetAttributes(attribute.String("filter", filter.String()))
	span.SetAttributes(attribute.String("query", query))

	exercises := handler.store.Search(filter, query)
	pkg.WriteJSON(w, ListResponse{
		Exercises: exercises,
		Total:     len(exercises),
	}, http.StatusOK)
}

func (handler *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.recent")
	defer span.End()

	limit := defaultRecentLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			http.Error(w, "error, limit must be a positive number", http.StatusBadRequest)
			return
		}
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	exercises := handler.store.Recent(limit)
	pkg.WriteJSON(w, ListResponse{
		Exercises: exercises,
		Total:     len(exercises),
	}, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.history")
	defer span.End()

	name := mux.Vars(r)["name"]
	if name == "" {
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("name", name))

	history := handler.store.History(name)
	pkg.WriteJSON(w, ListResponse{
		Exercises: history,
		Total:     len(history),
	}, http.StatusOK)
}

func (handler *Handler) HandleWeeklyProgress(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.weekly-progress")
	defer span.End()

	pkg.WriteJSON(w, handler.store.WeeklyProgress(), http.StatusOK)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.summary")
	defer span.End()

	pkg.WriteJSON(w, handler.store.Summary(), http.StatusOK)
}

func (handler *Handler) HandleMuscleGroups(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, MuscleGroups(), http.StatusOK)
}

func (handler *Handler) HandleDateFilters(w http.ResponseWriter, _ *http.Request) {
	filters := DateFilters()
	infos := make([]DateFilterInfo, 0, len(filters))
	for _, f := range filters {
		infos = append(infos, DateFilterInfo{
			Value: f.String(),
			Name:  f.DisplayName(),
		})
	}
	pkg.WriteJSON(w, infos, http.StatusOK)
}
