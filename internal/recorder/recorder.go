// Package recorder persists one row per tick per distributed interface
// link to a SQLite database, grounded on the teacher's datarecording
// package: batched inserts inside a single transaction, flushed on
// exit. Unlike the teacher, the schema here is a fixed, explicit column
// list rather than one derived by reflection — this repository's go.mod
// does not carry the teacher's reflection-based structs dependency, and
// a distributed-interface frame record has a small, stable shape that
// does not benefit from it (see DESIGN.md).
package recorder

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/distfluid/internal/engine"
)

// Frame is one tick's recorded state for one distributed interface link.
type Frame struct {
	LinkName    string
	FrameCount  uint64
	TimeSeconds float64
	DemandMode  bool
	Capacitance float64
	Source      float64
	Energy      float64
	Pressure    float64
}

// Recorder batches Frame rows and flushes them to a SQLite database.
type Recorder struct {
	db        *sql.DB
	batchSize int
	pending   []Frame
}

// New creates a new SQLite database named path+".sqlite3" and fails if
// that file already exists. If path is empty, a name is generated with
// rs/xid, matching the teacher's default-name convention. Flush is
// registered with tebeka/atexit, so buffered frames are written when the
// process exits through atexit.Exit or atexit.Fatal without an explicit
// Close.
func New(path string) (*Recorder, error) {
	if path == "" {
		path = "distfluid_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("recorder: %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("recorder: open %s: %w", filename, err)
	}

	const createTableSQL = `CREATE TABLE frames (
		linkName    TEXT,
		frameCount  INTEGER,
		timeSeconds REAL,
		demandMode  INTEGER,
		capacitance REAL,
		source      REAL,
		energy      REAL,
		pressure    REAL
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("recorder: create table: %w", err)
	}

	r := &Recorder{db: db, batchSize: 10000}

	atexit.Register(func() { _ = r.Flush() })

	return r, nil
}

// Record buffers f for the next Flush, flushing early if the batch size
// is reached.
func (r *Recorder) Record(f Frame) {
	r.pending = append(r.pending, f)

	if len(r.pending) >= r.batchSize {
		_ = r.Flush()
	}
}

// Flush writes every pending frame inside a single transaction.
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("recorder: begin transaction: %w", err)
	}

	const insertSQL = `INSERT INTO frames
		(linkName, frameCount, timeSeconds, demandMode, capacitance, source, energy, pressure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("recorder: prepare insert: %w", err)
	}

	for _, f := range r.pending {
		if _, err := stmt.Exec(
			f.LinkName, f.FrameCount, f.TimeSeconds, f.DemandMode,
			f.Capacitance, f.Source, f.Energy, f.Pressure,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("recorder: insert frame: %w", err)
		}
	}

	_ = stmt.Close()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recorder: commit: %w", err)
	}

	r.pending = nil

	return nil
}

// Func implements engine.Hook: it records whatever Frame a Hookable
// passes at engine.HookPosTick, letting a Recorder attach to a simulated
// side with AcceptHook instead of the side having to know a Recorder
// exists.
func (r *Recorder) Func(ctx engine.HookCtx) {
	if ctx.Pos != engine.HookPosTick {
		return
	}

	f, ok := ctx.Item.(Frame)
	if !ok {
		return
	}

	r.Record(f)
}

// Close flushes any pending frames and closes the underlying database.
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}

	return r.db.Close()
}
