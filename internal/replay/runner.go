package replay

import (
	"context"
	"fmt"
	"io"

	"github.com/banshee-data/visiontrack/internal/mot"
)

// FrameFunc receives the tracker output for each replayed frame. frame is the
// tracker's own 1-based counter. Returning an error aborts the replay.
type FrameFunc func(frame int, outputs []mot.TrackOutput) error

// Run feeds every frame of the recording through the tracker, invoking fn
// after each update when non-nil. It returns the number of frames processed.
// The context is checked between frames so long replays can be cancelled.
func Run(ctx context.Context, r *Reader, tracker *mot.Tracker, fn FrameFunc) (int, error) {
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		f, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("replay frame %d: %w", frames+1, err)
		}

		outputs := tracker.Update(f.ToDetections())
		frames++

		if fn != nil {
			if err := fn(tracker.Frame(), outputs); err != nil {
				return frames, err
			}
		}
	}
}
