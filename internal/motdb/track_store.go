package motdb

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/visiontrack/internal/mot"
)

// TrackStore defines the interface for track persistence operations.
type TrackStore interface {
	InsertRun(run *Run) error
	FinishRun(runID string, frames int) error
	UpsertTrack(runID string, trk *mot.Track, frame int) error
	InsertObservation(obs *TrackObservation) error
	GetTracks(runID string) ([]*TrackRecord, error)
	GetObservations(runID string, trackID int64, limit int) ([]*TrackObservation, error)
	ClearRun(runID string) error
}

// Run groups the tracks produced by one pass over a detection source.
type Run struct {
	RunID            string // UUID assigned by the caller
	Source           string // Detections file or stream identity
	StartedUnixNanos int64
	Frames           int
}

// TrackRecord is the persisted aggregate row for one track.
type TrackRecord struct {
	RunID      string
	TrackID    int64
	Label      string
	State      string
	FirstFrame int
	LastFrame  int
	HitCount   int
	AgeFrames  int
	LastScore  float64
	LastBox    mot.Box
	P50Speed   float64
	P85Speed   float64
	P95Speed   float64
}

// TrackObservation is one per-frame reported position of a track.
type TrackObservation struct {
	RunID   string
	TrackID int64
	Frame   int
	Box     mot.Box
	Score   float64
	State   string
}

var _ TrackStore = (*DB)(nil)

// InsertRun records a new run.
func (db *DB) InsertRun(run *Run) error {
	_, err := db.Exec(`
		INSERT INTO mot_runs (run_id, source, started_unix_nanos, frames)
		VALUES (?, ?, ?, ?)
	`, run.RunID, run.Source, run.StartedUnixNanos, run.Frames)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun updates the frame count once a run completes.
func (db *DB) FinishRun(runID string, frames int) error {
	_, err := db.Exec(`UPDATE mot_runs SET frames = ? WHERE run_id = ?`, frames, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// UpsertTrack writes or refreshes the aggregate row for a track. frame is
// the frame index the snapshot was taken at; first_frame is preserved on
// conflict so the track's origin survives repeated upserts.
func (db *DB) UpsertTrack(runID string, trk *mot.Track, frame int) error {
	p50, p85, p95 := mot.SpeedPercentiles(trk.SpeedHistory())

	firstFrame := frame - trk.Age + 1
	if firstFrame < 1 {
		firstFrame = 1
	}

	_, err := db.Exec(`
		INSERT INTO mot_tracks (
			run_id, track_id, label, track_state,
			first_frame, last_frame, hit_count, age_frames,
			last_score, last_x, last_y, last_w, last_h,
			p50_speed, p85_speed, p95_speed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, track_id) DO UPDATE SET
			label = excluded.label,
			track_state = excluded.track_state,
			last_frame = excluded.last_frame,
			hit_count = excluded.hit_count,
			age_frames = excluded.age_frames,
			last_score = excluded.last_score,
			last_x = excluded.last_x,
			last_y = excluded.last_y,
			last_w = excluded.last_w,
			last_h = excluded.last_h,
			p50_speed = excluded.p50_speed,
			p85_speed = excluded.p85_speed,
			p95_speed = excluded.p95_speed
	`,
		runID, trk.ID, trk.Label, string(trk.State),
		firstFrame, frame, trk.HitStreak, trk.Age,
		trk.Score, trk.LastBox.X, trk.LastBox.Y, trk.LastBox.W, trk.LastBox.H,
		p50, p85, p95,
	)
	if err != nil {
		return fmt.Errorf("upsert track %d: %w", trk.ID, err)
	}
	return nil
}

// InsertObservation writes a single per-frame observation for a track.
func (db *DB) InsertObservation(obs *TrackObservation) error {
	_, err := db.Exec(`
		INSERT INTO mot_track_obs (run_id, track_id, frame, x, y, w, h, score, track_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		obs.RunID, obs.TrackID, obs.Frame,
		obs.Box.X, obs.Box.Y, obs.Box.W, obs.Box.H,
		obs.Score, obs.State,
	)
	if err != nil {
		return fmt.Errorf("insert observation for track %d frame %d: %w", obs.TrackID, obs.Frame, err)
	}
	return nil
}

// GetTracks returns all track records for a run, ordered by track identifier.
func (db *DB) GetTracks(runID string) ([]*TrackRecord, error) {
	rows, err := db.Query(`
		SELECT run_id, track_id, label, track_state,
		       first_frame, last_frame, hit_count, age_frames,
		       last_score, last_x, last_y, last_w, last_h,
		       p50_speed, p85_speed, p95_speed
		FROM mot_tracks
		WHERE run_id = ?
		ORDER BY track_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var out []*TrackRecord
	for rows.Next() {
		rec := &TrackRecord{}
		var label sql.NullString
		err := rows.Scan(
			&rec.RunID, &rec.TrackID, &label, &rec.State,
			&rec.FirstFrame, &rec.LastFrame, &rec.HitCount, &rec.AgeFrames,
			&rec.LastScore, &rec.LastBox.X, &rec.LastBox.Y, &rec.LastBox.W, &rec.LastBox.H,
			&rec.P50Speed, &rec.P85Speed, &rec.P95Speed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan track row: %w", err)
		}
		rec.Label = label.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetObservations returns a track's observations in frame order. limit <= 0
// means no limit; trackID <= 0 returns observations for every track in the run.
func (db *DB) GetObservations(runID string, trackID int64, limit int) ([]*TrackObservation, error) {
	query := `
		SELECT run_id, track_id, frame, x, y, w, h, score, track_state
		FROM mot_track_obs
		WHERE run_id = ?
	`
	args := []any{runID}
	if trackID > 0 {
		query += " AND track_id = ?"
		args = append(args, trackID)
	}
	query += " ORDER BY track_id, frame"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []*TrackObservation
	for rows.Next() {
		obs := &TrackObservation{}
		err := rows.Scan(
			&obs.RunID, &obs.TrackID, &obs.Frame,
			&obs.Box.X, &obs.Box.Y, &obs.Box.W, &obs.Box.H,
			&obs.Score, &obs.State,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

// ClearRun deletes a run and, through cascading foreign keys, all of its
// tracks and observations.
func (db *DB) ClearRun(runID string) error {
	if _, err := db.Exec(`DELETE FROM mot_runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear run: %w", err)
	}
	return nil
}
