//go:build integration_test || all_tests

package integration_testing

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/2beens/fittracker/internal"
	"github.com/2beens/fittracker/internal/config"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverPort  = 9300
	serverHost  = "localhost"
	metricsPort = "9301"
	storageKey  = "SavedExercisesIntegration"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

type Suite struct {
	RedisPort  string
	dockerPool *dockertest.Pool
	server     *internal.Server
	teardown   []func()
}

func newSuite(ctx context.Context) *Suite {
	var err error
	suite := &Suite{
		teardown: make([]func(), 0),
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	suite.RedisPort, err = suite.redisSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}

	if err := suite.startServer(ctx); err != nil {
		suite.cleanup()
		log.Fatalf("start server: %s", err)
	}

	return suite
}

// startServer builds a fresh server against the suite redis, which loads
// whatever exercise log is currently stored there.
func (s *Suite) startServer(ctx context.Context) error {
	cfg, err := getTestConfig(s.RedisPort)
	if err != nil {
		return err
	}

	s.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             "test-version-info",
			RedisPassword:           "",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}

	s.server.Serve(ctx, cfg.Host, cfg.Port)
	return waitForServer(ctx)
}

// restartServer shuts the running server down and starts a new one.
func (s *Suite) restartServer(ctx context.Context) error {
	if s.server != nil {
		s.server.GracefulShutdown()
		s.server = nil
	}
	return s.startServer(ctx)
}

func (s *Suite) cleanup() {
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func getTestConfig(redisPort string) (*config.Config, error) {
	return config.Parse("development", fmt.Sprintf(`
[development]
host = "%s"
port = %d
prometheus_metrics_port = "%s"
log_level = "debug"
log_to_stdout = true
storage_backend = "redis"
storage_key = "%s"
redis_host = "localhost"
redis_port = "%s"
first_weekday = "monday"
time_zone = "UTC"
add_exercise_rate_limit_per_min = 1000
`, serverHost, serverPort, metricsPort, storageKey, redisPort))
}

func waitForServer(ctx context.Context) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverEndpoint+"/version", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server at [%s] not ready", serverEndpoint)
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "fittracker-redis",
		Tag:        "7.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		redisResource.Close()
	})

	redisPort := redisResource.GetPort("6379/tcp")
	return redisPort, nil
}
