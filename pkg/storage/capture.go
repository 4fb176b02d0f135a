// Package storage persists decoded NatNet capture data to a local SQLite
// database for later replay and analysis.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mocaptools/natnet-go/pkg/protocol"
	"github.com/mocaptools/natnet-go/pkg/version"
)

var ErrNoSession = errors.New("no such capture session")

// CaptureDB records capture sessions and per-frame summaries.
type CaptureDB struct {
	db *sql.DB
}

// FrameRecord is the stored summary of one frame of data.
type FrameRecord struct {
	SessionID          int64
	FrameNumber        int32
	Latency            float32
	Timecode           uint32
	TimecodeSub        uint32
	Timestamp          sql.NullFloat64
	IsRecording        sql.NullBool
	MarkerSetCount     int
	OtherMarkerCount   int
	RigidBodyCount     int
	SkeletonCount      int
	LabeledMarkerCount int
	ForcePlateCount    int
	ReceivedAt         int64
}

// Session describes one recording session.
type Session struct {
	ID            int64
	StartedAt     int64
	NatNetVersion string
	AppName       string
	AppVersion    string
}

// Open opens (creating if needed) a capture database at the given path.
func Open(path string) (*CaptureDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// WAL mode keeps the recorder from blocking readers
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %v", err)
	}

	cdb := &CaptureDB{db: db}
	if err := cdb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return cdb, nil
}

func (c *CaptureDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at INTEGER NOT NULL,
		natnet_version TEXT NOT NULL,
		app_name TEXT,
		app_version TEXT
	);

	CREATE TABLE IF NOT EXISTS frames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		frame_number INTEGER NOT NULL,
		latency REAL NOT NULL,
		timecode INTEGER NOT NULL,
		timecode_sub INTEGER NOT NULL,
		timestamp REAL,
		is_recording INTEGER,
		marker_set_count INTEGER NOT NULL,
		other_marker_count INTEGER NOT NULL,
		rigid_body_count INTEGER NOT NULL,
		skeleton_count INTEGER NOT NULL,
		labeled_marker_count INTEGER NOT NULL,
		force_plate_count INTEGER NOT NULL,
		received_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_frames_session ON frames(session_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}
	return nil
}

// BeginSession opens a new recording session. The sender may be nil when
// the server was never probed.
func (c *CaptureDB) BeginSession(ver version.Version, sender *protocol.Sender) (int64, error) {
	var appName, appVersion string
	if sender != nil {
		appName = sender.Name
		appVersion = sender.Version.String()
	}

	res, err := c.db.Exec(
		`INSERT INTO sessions (started_at, natnet_version, app_name, app_version) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), ver.String(), appName, appVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %v", err)
	}
	return res.LastInsertId()
}

// RecordFrame stores a summary of one decoded frame.
func (c *CaptureDB) RecordFrame(sessionID int64, f *protocol.FrameOfData) error {
	var timestamp sql.NullFloat64
	if f.Timestamp != nil {
		timestamp = sql.NullFloat64{Float64: *f.Timestamp, Valid: true}
	}
	var isRecording sql.NullBool
	if f.IsRecording != nil {
		isRecording = sql.NullBool{Bool: *f.IsRecording, Valid: true}
	}

	_, err := c.db.Exec(
		`INSERT INTO frames (
			session_id, frame_number, latency, timecode, timecode_sub,
			timestamp, is_recording,
			marker_set_count, other_marker_count, rigid_body_count,
			skeleton_count, labeled_marker_count, force_plate_count,
			received_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, f.FrameNumber, f.Latency, f.Timecode, f.TimecodeSub,
		timestamp, isRecording,
		len(f.MarkerSets), len(f.OtherMarkers), len(f.RigidBodies),
		len(f.Skeletons), len(f.LabeledMarkers), len(f.ForcePlates),
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record frame: %v", err)
	}
	return nil
}

// GetSession returns one session by ID.
func (c *CaptureDB) GetSession(id int64) (*Session, error) {
	var s Session
	err := c.db.QueryRow(
		`SELECT id, started_at, natnet_version, app_name, app_version FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.StartedAt, &s.NatNetVersion, &s.AppName, &s.AppVersion)
	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %v", err)
	}
	return &s, nil
}

// FrameCount returns the number of frames recorded for a session.
func (c *CaptureDB) FrameCount(sessionID int64) (int64, error) {
	var n int64
	err := c.db.QueryRow(`SELECT COUNT(*) FROM frames WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count frames: %v", err)
	}
	return n, nil
}

// RecentFrames returns up to limit frame summaries for a session, newest
// first.
func (c *CaptureDB) RecentFrames(sessionID int64, limit int) ([]FrameRecord, error) {
	rows, err := c.db.Query(
		`SELECT session_id, frame_number, latency, timecode, timecode_sub,
			timestamp, is_recording,
			marker_set_count, other_marker_count, rigid_body_count,
			skeleton_count, labeled_marker_count, force_plate_count,
			received_at
		FROM frames WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %v", err)
	}
	defer rows.Close()

	var records []FrameRecord
	for rows.Next() {
		var r FrameRecord
		if err := rows.Scan(
			&r.SessionID, &r.FrameNumber, &r.Latency, &r.Timecode, &r.TimecodeSub,
			&r.Timestamp, &r.IsRecording,
			&r.MarkerSetCount, &r.OtherMarkerCount, &r.RigidBodyCount,
			&r.SkeletonCount, &r.LabeledMarkerCount, &r.ForcePlateCount,
			&r.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %v", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database.
func (c *CaptureDB) Close() error {
	return c.db.Close()
}
