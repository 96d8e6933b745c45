// Command trackreplay runs a recorded JSONL detection stream through the
// tracker and prints a per-run summary. With -db it also persists the run,
// its tracks, and every reported observation to a SQLite database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/visiontrack/internal/config"
	"github.com/banshee-data/visiontrack/internal/mot"
	"github.com/banshee-data/visiontrack/internal/motdb"
	"github.com/banshee-data/visiontrack/internal/replay"
	"github.com/banshee-data/visiontrack/internal/version"
)

func main() {
	input := flag.String("i", "", "input JSONL detection recording (required)")
	dbPath := flag.String("db", "", "SQLite database to persist the run into (optional)")
	migrations := flag.String("migrations", "migrations", "path to database migrations")
	configPath := flag.String("config", "", "tuning config JSON (defaults to compiled-in values)")
	printJSON := flag.Bool("json", false, "print per-frame track outputs as JSON lines")
	verbose := flag.Bool("v", false, "log lifecycle transitions")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("trackreplay %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load tuning config: %v", err)
		}
	}

	trackerConfig := mot.TrackerConfigFromTuning(tuning)
	trackerConfig.Verbose = *verbose
	tracker := mot.NewTracker(trackerConfig)

	reader, err := replay.Open(*input)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer reader.Close()

	var store *motdb.DB
	runID := uuid.New().String()
	if *dbPath != "" {
		store, err = motdb.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer store.Close()
		if err := store.MigrateUp(*migrations); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
		err = store.InsertRun(&motdb.Run{
			RunID:            runID,
			Source:           *input,
			StartedUnixNanos: time.Now().UnixNano(),
		})
		if err != nil {
			log.Fatalf("insert run: %v", err)
		}
		log.Printf("persisting run %s to %s", runID, *dbPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	start := time.Now()

	frames, err := replay.Run(ctx, reader, tracker, func(frame int, outputs []mot.TrackOutput) error {
		if *printJSON {
			line := struct {
				Frame  int               `json:"frame"`
				Tracks []mot.TrackOutput `json:"tracks"`
			}{Frame: frame, Tracks: outputs}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
		if store == nil {
			return nil
		}
		for _, out := range outputs {
			obs := &motdb.TrackObservation{
				RunID:   runID,
				TrackID: out.ID,
				Frame:   frame,
				Box:     out.Box,
				Score:   out.Score,
				State:   string(out.State),
			}
			if err := store.InsertObservation(obs); err != nil {
				return err
			}
		}
		for _, trk := range tracker.ActiveTracks() {
			if err := store.UpsertTrack(runID, trk, frame); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("replay failed after %d frames: %v", frames, err)
	}

	if store != nil {
		if err := store.FinishRun(runID, frames); err != nil {
			log.Fatalf("finish run: %v", err)
		}
	}

	stats := tracker.Stats()
	elapsed := time.Since(start)
	fmt.Printf("processed %d frames in %s (%.0f fps)\n", frames, elapsed.Round(time.Millisecond), float64(frames)/elapsed.Seconds())
	fmt.Printf("tracks created: %d, removed: %d, detections dropped: %d\n",
		stats.TracksCreated, stats.TracksRemoved, stats.DetectionsDropped)
	fmt.Printf("active at end: %d total (%d tentative, %d confirmed, %d lost)\n",
		stats.ActiveTotal, stats.ActiveTentative, stats.ActiveConfirmed, stats.ActiveLost)
	if store != nil {
		fmt.Printf("run id: %s\n", runID)
	}
}
