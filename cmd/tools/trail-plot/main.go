// Command trail-plot renders a persisted run's track trails to a PNG using
// gonum/plot. It is the static counterpart of track-report for embedding in
// docs or attaching to issue reports.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/visiontrack/internal/motdb"
)

func main() {
	dbPath := flag.String("db", "", "SQLite database (required)")
	runID := flag.String("run", "", "run id to plot (required)")
	output := flag.String("o", "trails.png", "output PNG path")
	width := flag.Float64("w", 12, "plot width in inches")
	height := flag.Float64("h", 8, "plot height in inches")
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

	trails := make(map[int64]plotter.XYs)
	for _, obs := range observations {
		cx := obs.Box.X + obs.Box.W/2
		cy := obs.Box.Y + obs.Box.H/2
		trails[obs.TrackID] = append(trails[obs.TrackID], plotter.XY{X: cx, Y: cy})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Track Trails (run %s)", *runID)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	colors := trailColors(len(tracks))
	plotted := 0
	for i, rec := range tracks {
		pts := trails[rec.TrackID]
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			log.Fatalf("track %d: %v", rec.TrackID, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)

		label := fmt.Sprintf("track %d", rec.TrackID)
		if rec.Label != "" {
			label = fmt.Sprintf("track %d (%s)", rec.TrackID, rec.Label)
		}
		p.Legend.Add(label, line)
		plotted++
	}
	if plotted == 0 {
		log.Fatalf("no observations found for run %s", *runID)
	}

	if err := p.Save(vg.Length(*width)*vg.Inch, vg.Length(*height)*vg.Inch, *output); err != nil {
		log.Fatalf("save plot: %v", err)
	}
	log.Printf("✓ Created: %s (%d trails)", *output, plotted)
}

// trailColors returns n visually distinct colors, cycling a fixed palette.
func trailColors(n int) []color.Color {
	palette := []color.Color{
		color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
		color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
		color.RGBA{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
		color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}
