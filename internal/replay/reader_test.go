package replay

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/visiontrack/internal/mot"
)

const sampleRecording = `{"frame": 1, "detections": [{"box": [100, 200, 40, 80], "score": 0.91, "label": "person"}]}

{"frame": 2, "detections": [{"box": [104, 202, 40, 80], "score": 0.88, "label": "person"}]}
{"frame": 3, "detections": []}
`

func TestReaderNext(t *testing.T) {
	r := NewReader(strings.NewReader(sampleRecording))

	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, f.Frame)
	require.Len(t, f.Detections, 1)
	assert.Equal(t, [4]float64{100, 200, 40, 80}, f.Detections[0].Box)
	assert.Equal(t, 0.91, f.Detections[0].Score)
	assert.Equal(t, "person", f.Detections[0].Label)

	f, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, f.Frame)

	f, err = r.Next()
	require.NoError(t, err)
	assert.Empty(t, f.Detections)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderMalformedLine(t *testing.T) {
	r := NewReader(strings.NewReader("{\"frame\": 1, \"detections\": []}\nnot json\n"))

	_, err := r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestFrameToDetections(t *testing.T) {
	f := &Frame{
		Detections: []FrameDetection{
			{Box: [4]float64{10, 20, 30, 40}, Score: 0.7, Label: "car"},
		},
	}
	dets := f.ToDetections()
	require.Len(t, dets, 1)
	assert.Equal(t, mot.Box{X: 10, Y: 20, W: 30, H: 40}, dets[0].Box)
	assert.Equal(t, 0.7, dets[0].Score)
	assert.Equal(t, "car", dets[0].Label)

	assert.Nil(t, (&Frame{}).ToDetections())
}

func TestRunDrivesTracker(t *testing.T) {
	cfg := mot.DefaultTrackerConfig()
	cfg.MinHits = 2
	tracker := mot.NewTracker(cfg)

	var reported [][]mot.TrackOutput
	r := NewReader(strings.NewReader(sampleRecording))
	frames, err := Run(context.Background(), r, tracker, func(frame int, outputs []mot.TrackOutput) error {
		reported = append(reported, outputs)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
	assert.Equal(t, 3, tracker.Frame())

	// Frame 1 spawns a tentative track; frame 2 confirms it.
	require.Len(t, reported, 3)
	assert.Empty(t, reported[0])
	require.Len(t, reported[1], 1)
	assert.Equal(t, int64(1), reported[1][0].ID)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReader(strings.NewReader(sampleRecording))
	frames, err := Run(ctx, r, mot.NewTracker(mot.DefaultTrackerConfig()), nil)
	assert.Equal(t, 0, frames)
	assert.ErrorIs(t, err, context.Canceled)
}
