package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

// RegisteredFace is a face stored in the SQLite registry.
type RegisteredFace struct {
	ID           int64
	RunID        string
	FontFamily   string
	Provider     string
	Face         webfonts.FontFace
	RegisteredAt time.Time
}

// SQLiteRegistrar keeps the registered faces of the latest run in SQLite.
//
// Each Register call replaces the previous snapshot. Within a run, faces that
// match an earlier face on font-family, style, weight, stretch, unicode-range
// and provider are skipped, so the first declaration wins.
type SQLiteRegistrar struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// NewSQLiteRegistrar opens the registry at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteRegistrar(dbPath string) (*SQLiteRegistrar, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	r := &SQLiteRegistrar{db: db, now: time.Now}
	if err := r.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return r, nil
}

func (r *SQLiteRegistrar) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS font_faces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fingerprint TEXT NOT NULL UNIQUE,
		run_id TEXT NOT NULL,
		font_family TEXT NOT NULL,
		provider TEXT NOT NULL,
		descriptor TEXT NOT NULL,
		registered_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_font_faces_family ON font_faces(font_family);
	`
	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteRegistrar) Name() string { return "sqlite" }

// Register replaces the stored faces with faces.
func (r *SQLiteRegistrar) Register(ctx context.Context, runID string, faces []webfonts.FontFace) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM font_faces"); err != nil {
		return Result{}, fmt.Errorf("clear previous registration: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO font_faces (fingerprint, run_id, font_family, provider, descriptor, registered_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return Result{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var res Result
	ts := r.now().Unix()
	for _, face := range faces {
		descriptor, err := json.Marshal(face)
		if err != nil {
			return Result{}, fmt.Errorf("marshal font face: %w", err)
		}
		out, err := stmt.ExecContext(ctx, Fingerprint(face), runID,
			face.StringValue("font-family"), face.StringValue("provider"), string(descriptor), ts)
		if err != nil {
			return Result{}, fmt.Errorf("insert font face: %w", err)
		}
		if n, _ := out.RowsAffected(); n == 0 {
			res.Skipped++
			continue
		}
		res.Accepted++
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit registration: %w", err)
	}
	return res, nil
}

// List returns the registered faces in registration order.
func (r *SQLiteRegistrar) List(ctx context.Context) ([]RegisteredFace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, run_id, font_family, provider, descriptor, registered_at FROM font_faces ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query font faces: %w", err)
	}
	defer rows.Close()

	var out []RegisteredFace
	for rows.Next() {
		var rf RegisteredFace
		var descriptor string
		var ts int64
		if err := rows.Scan(&rf.ID, &rf.RunID, &rf.FontFamily, &rf.Provider, &descriptor, &ts); err != nil {
			return nil, fmt.Errorf("scan font face: %w", err)
		}
		if err := json.Unmarshal([]byte(descriptor), &rf.Face); err != nil {
			return nil, fmt.Errorf("unmarshal font face %d: %w", rf.ID, err)
		}
		rf.RegisteredAt = time.Unix(ts, 0)
		out = append(out, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (r *SQLiteRegistrar) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}
