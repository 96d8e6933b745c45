// Command track-report renders an HTML trail report for a persisted run.
// Each track's reported positions are drawn as a scatter series so crossing
// or fragmented trajectories stand out at a glance.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/visiontrack/internal/motdb"
)

func main() {
	dbPath := flag.String("db", "", "SQLite database (required)")
	runID := flag.String("run", "", "run id to report on (required)")
	output := flag.String("o", "track-report.html", "output HTML path")
	maxPoints := flag.Int("max-points", 20000, "downsample per-track trails beyond this many total points")
	flag.Parse()

	if *dbPath == "" || *runID == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := motdb.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	tracks, err := db.GetTracks(*runID)
	if err != nil {
		log.Fatalf("load tracks: %v", err)
	}
	if len(tracks) == 0 {
		log.Fatalf("no tracks found for run %s", *runID)
	}

	observations, err := db.GetObservations(*runID, 0, 0)
	if err != nil {
		log.Fatalf("load observations: %v", err)
	}

	// Downsample by stride to stay within maxPoints across all trails.
	stride := 1
	if len(observations) > *maxPoints {
		stride = int(math.Ceil(float64(len(observations)) / float64(*maxPoints)))
	}

	trails := make(map[int64][]opts.ScatterData)
	maxX, maxY := 0.0, 0.0
	for i, obs := range observations {
		if stride > 1 && i%stride != 0 {
			continue
		}
		cx := obs.Box.X + obs.Box.W/2
		cy := obs.Box.Y + obs.Box.H/2
		if cx > maxX {
			maxX = cx
		}
		if cy > maxY {
			maxY = cy
		}
		trails[obs.TrackID] = append(trails[obs.TrackID], opts.ScatterData{Value: []interface{}{cx, cy, obs.Frame}})
	}

	padX := maxX * 1.05
	padY := maxY * 1.05
	if padX == 0 {
		padX = 1.0
	}
	if padY == 0 {
		padY = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Trails", Theme: "dark", Width: "1200px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: "Track Trails", Subtitle: fmt.Sprintf("run=%s tracks=%d points=%d stride=%d", *runID, len(tracks), len(observations), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: padX, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: padY, Name: "Y", NameLocation: "middle", NameGap: 30}),
	)

	// Iterate the aggregate rows, not the map, so series order is stable.
	for _, rec := range tracks {
		trail := trails[rec.TrackID]
		if len(trail) == 0 {
			continue
		}
		name := fmt.Sprintf("track %d", rec.TrackID)
		if rec.Label != "" {
			name = fmt.Sprintf("track %d (%s)", rec.TrackID, rec.Label)
		}
		scatter.AddSeries(name, trail, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		log.Fatalf("render chart: %v", err)
	}
	log.Printf("✓ Created: %s (%d tracks)", *output, len(tracks))
}
