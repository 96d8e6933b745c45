// Package replay reads recorded detection streams and feeds them through a
// tracker, reproducing the association decisions a live pipeline would make.
//
// The on-disk format is JSON Lines: one frame per line, for example
//
//	{"frame": 12, "detections": [{"box": [100, 200, 40, 80], "score": 0.91, "label": "person"}]}
//
// Frames are consumed in file order. The frame field is advisory; trackers
// keep their own counter, so gaps in recorded frame numbers are treated as
// consecutive updates.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/visiontrack/internal/mot"
)

// maxLineBytes bounds a single JSONL line. Crowded frames with hundreds of
// detections fit comfortably; anything larger is a corrupt recording.
const maxLineBytes = 4 * 1024 * 1024

// Frame is one decoded line of a detection recording.
type Frame struct {
	Frame      int              `json:"frame"`
	Detections []FrameDetection `json:"detections"`
}

// FrameDetection mirrors the wire shape of a single detection.
type FrameDetection struct {
	Box   [4]float64 `json:"box"` // x, y, w, h
	Score float64    `json:"score"`
	Label string     `json:"label,omitempty"`
}

// ToDetections converts a frame's wire detections to tracker input.
func (f *Frame) ToDetections() []mot.Detection {
	if len(f.Detections) == 0 {
		return nil
	}
	out := make([]mot.Detection, len(f.Detections))
	for i, d := range f.Detections {
		out[i] = mot.Detection{
			Box:   mot.Box{X: d.Box[0], Y: d.Box[1], W: d.Box[2], H: d.Box[3]},
			Score: d.Score,
			Label: d.Label,
		}
	}
	return out
}

// Reader decodes a JSONL detection recording frame by frame.
type Reader struct {
	src     io.Closer
	scanner *bufio.Scanner
	line    int
}

// NewReader wraps an open stream. The caller retains ownership of r unless it
// also implements io.Closer, in which case Close passes through.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	rd := &Reader{scanner: sc}
	if c, ok := r.(io.Closer); ok {
		rd.src = c
	}
	return rd
}

// Open opens a recording file for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	return NewReader(f), nil
}

// Next returns the next frame, or io.EOF once the recording is exhausted.
// Blank lines are skipped; a malformed line is an error carrying its line
// number.
func (r *Reader) Next() (*Frame, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return &f, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	return nil, io.EOF
}

// Close closes the underlying file if the reader owns one.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	return r.src.Close()
}
