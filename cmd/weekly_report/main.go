package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/2beens/fittracker/internal/blobstore"
	"github.com/2beens/fittracker/internal/config"
	"github.com/2beens/fittracker/internal/logging"
	"github.com/2beens/fittracker/internal/telemetry/metrics"
	"github.com/2beens/fittracker/internal/workout"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	weeks := flag.Int("weeks", 8, "number of most recent weeks to print (0 for all)")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	// the report goes to stdout, logs stay on stderr
	log.SetLevel(logging.GetLevel(cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	secrets, err := config.LoadSecrets(ctx)
	if err != nil {
		log.Fatalf("load secrets: %s", err)
	}

	if cfg.StorageBackend == config.StorageBackendMemory {
		log.Fatalln("memory storage backend holds no data outside the service process")
	}

	blobs, rdb, err := blobstore.Open(ctx, blobstore.OpenParams{
		Backend:       cfg.StorageBackend,
		DiskPath:      cfg.DiskStorePath,
		RedisHost:     cfg.RedisHost,
		RedisPort:     cfg.RedisPort,
		RedisPassword: secrets.RedisPassword,
	})
	if err != nil {
		log.Fatalf("open blob store: %s", err)
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("close redis client: %s", err)
			}
		}()
	}

	firstWeekday, err := cfg.Weekday()
	if err != nil {
		log.Fatalln(err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalln(err)
	}
	analyzer := workout.NewAnalyzer(workout.Calendar{FirstWeekday: firstWeekday, Location: loc}, nil)

	store := workout.NewStore(blobs, cfg.StorageKey, analyzer, metrics.NewManager("fittracker", "weekly_report", prometheus.NewRegistry()))
	loadResult := store.Load(ctx)
	if loadResult.Status == workout.LoadStatusUnavailable || loadResult.Status == workout.LoadStatusCorrupted {
		log.Fatalf("exercise log [%s] %s: %s", cfg.StorageKey, loadResult.Status, loadResult.Err)
	}

	r := newReport(store.WeeklyProgress(), store.Summary(), *weeks)
	if *asJSON {
		err = r.writeJSON(os.Stdout)
	} else {
		err = r.writeTable(os.Stdout)
	}
	if err != nil {
		log.Fatalf("write report: %s", err)
	}
}

type report struct {
	Weeks   []workout.WeeklyProgress `json:"weeks"`
	Summary workout.Summary          `json:"summary"`
}

func newReport(weekly []workout.WeeklyProgress, summary workout.Summary, maxWeeks int) report {
	if maxWeeks > 0 && len(weekly) > maxWeeks {
		weekly = weekly[:maxWeeks]
	}
	return report{
		Weeks:   weekly,
		Summary: summary,
	}
}

func (r report) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r report) writeTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WEEK\tWORKOUTS\tSETS\tVOLUME")
	for _, week := range r.Weeks {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\n",
			week.WeekStart.Format(time.DateOnly),
			week.TotalWorkouts,
			week.TotalSets,
			week.TotalVolume,
		)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%.1f\n",
		r.Summary.TotalWorkouts,
		r.Summary.TotalSets,
		r.Summary.TotalVolume,
	)
	return tw.Flush()
}
