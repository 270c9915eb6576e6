package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/fittracker/internal/blobstore"
	"github.com/2beens/fittracker/internal/config"
	"github.com/2beens/fittracker/internal/middleware"
	"github.com/2beens/fittracker/internal/telemetry/metrics"
	"github.com/2beens/fittracker/internal/telemetry/tracing"
	"github.com/2beens/fittracker/internal/workout"
	"github.com/2beens/fittracker/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	redisClient *redis.Client
	store       *workout.Store

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()

	stopWatchingAdds func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	promRegistry := metrics.SetupPrometheus(params.VersionInfo)
	metricsManager := metrics.NewManager("fittracker", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittracker-service")
	if err != nil {
		return nil, err
	}

	calendar, err := newCalendar(cfg)
	if err != nil {
		return nil, err
	}

	blobs, rdb, err := blobstore.Open(ctx, blobstore.OpenParams{
		Backend:        cfg.StorageBackend,
		DiskPath:       cfg.DiskStorePath,
		RedisHost:      cfg.RedisHost,
		RedisPort:      cfg.RedisPort,
		RedisPassword:  params.RedisPassword,
		MemorySizeMB:   cfg.MemoryStoreSizeMB,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	store := workout.NewStore(
		blobs,
		cfg.StorageKey,
		workout.NewAnalyzer(calendar, nil),
		metricsManager,
	)
	loadResult := store.Load(ctx)
	log.Infof("exercise log [%s]: %s, %d exercises", cfg.StorageKey, loadResult.Status, loadResult.Count)

	return &Server{
		config:         cfg,
		versionInfo:    params.VersionInfo,
		redisClient:    rdb,
		store:          store,
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func newCalendar(cfg *config.Config) (workout.Calendar, error) {
	firstWeekday, err := cfg.Weekday()
	if err != nil {
		return workout.Calendar{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return workout.Calendar{}, err
	}
	return workout.Calendar{
		FirstWeekday: firstWeekday,
		Location:     loc,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	// rate limiting needs redis, other backends add without a limit
	var addRateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		addRateLimiter = redis_rate.NewLimiter(s.redisClient)
	}
	addLimit := middleware.RateLimit(
		addRateLimiter,
		"add-exercise",
		s.config.AddExerciseRateLimitPerMin,
		s.metricsManager,
	)

	workoutHandler := workout.NewHandler(s.store)
	r.Handle("/exercises", addLimit(http.HandlerFunc(workoutHandler.HandleAdd))).Methods("POST", "OPTIONS").Name("add-exercise")
	r.HandleFunc("/exercises", workoutHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises/recent", workoutHandler.HandleRecent).Methods("GET", "OPTIONS").Name("recent-exercises")
	r.HandleFunc("/exercises/history/{name}", workoutHandler.HandleHistory).Methods("GET", "OPTIONS").Name("exercise-history")
	r.HandleFunc("/progress/weekly", workoutHandler.HandleWeeklyProgress).Methods("GET", "OPTIONS").Name("weekly-progress")
	r.HandleFunc("/progress/summary", workoutHandler.HandleSummary).Methods("GET", "OPTIONS").Name("summary")
	r.HandleFunc("/meta/muscle-groups", workoutHandler.HandleMuscleGroups).Methods("GET", "OPTIONS").Name("muscle-groups")
	r.HandleFunc("/meta/date-filters", workoutHandler.HandleDateFilters).Methods("GET", "OPTIONS").Name("date-filters")
	r.HandleFunc("/version", s.handleVersion).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest(s.config.MaxRequestBodyKB * 1024))

	return r
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	version := s.versionInfo
	if version == "" {
		version = "unknown"
	}
	pkg.WriteTextResponseOK(w, version)
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.stopWatchingAdds = s.watchAdds(ctx)
	s.metricsManager.GaugeLifeSignal.Set(1)
}

// watchAdds logs the running weekly totals after every added exercise.
func (s *Server) watchAdds(ctx context.Context) func() {
	added, unsubscribe := s.store.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ex, ok := <-added:
				if !ok {
					return
				}
				weekly := s.store.WeeklyProgress()
				if len(weekly) == 0 {
					continue
				}
				log.WithFields(log.Fields{
					"exercise": ex.Name,
					"week":     weekly[0].WeekStart.Format(time.DateOnly),
					"workouts": weekly[0].TotalWorkouts,
					"volume":   weekly[0].TotalVolume,
				}).Info("exercise logged")
			}
		}
	}()
	return func() {
		unsubscribe()
		<-done
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.stopWatchingAdds != nil {
		s.stopWatchingAdds()
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}
