package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/calder-vision/spinbridge/internal/infrastructure/config"
)

// Store configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// defaultListLimit is the page size when none is given.
	defaultListLimit = 50

	// maxListLimit caps query page size.
	maxListLimit = 200
)

// schema creates the setting_changes table on first open.
// Kept inline rather than in migration files: the store owns a single
// table and its shape changes with the code that writes it.
const schema = `
CREATE TABLE IF NOT EXISTS setting_changes (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	camera          TEXT NOT NULL,
	setting         TEXT NOT NULL,
	requested_value TEXT NOT NULL,
	actual_value    TEXT,
	verified        INTEGER NOT NULL,
	source          TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_setting_changes_camera
	ON setting_changes(camera, created_at);
`

// SettingChange is one recorded attempt to apply a camera setting.
//
// Verified reflects the round-trip check: the value was written to the
// device, read back, and matched within tolerance. An unverified entry
// means the device accepted a different value (or rejected the write).
type SettingChange struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Camera         string    `json:"camera"`
	Setting        string    `json:"setting"`
	RequestedValue string    `json:"requested_value"`
	ActualValue    string    `json:"actual_value,omitempty"`
	Verified       bool      `json:"verified"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists setting changes to SQLite.
//
// Thread Safety:
//   - All methods are safe for concurrent use. SQLite access is
//     serialized through a single connection.
type Store struct {
	db   *sql.DB
	path string

	// sessionID groups all changes recorded during one bridge run.
	sessionID string
}

// Open creates the audit store at the configured path.
//
// It performs the following setup:
//  1. Creates the database directory if it doesn't exist
//  2. Opens the database file with WAL mode and busy timeout
//  3. Creates the setting_changes table if not present
//  4. Verifies the connection with a ping
//
// Parameters:
//   - cfg: Audit configuration from config.yaml
//
// Returns:
//   - *Store: Ready store with a fresh session ID
//   - error: If the trail is disabled, or open/setup fails
func Open(cfg config.AuditConfig) (*Store, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	// Build connection string with pragmas
	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying audit database connection: %w", err)
	}

	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	// Set file permissions (owner read/write only)
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // First run creates the file later

	return &Store{
		db:        sqlDB,
		path:      cfg.Path,
		sessionID: "run-" + uuid.NewString()[:8],
	}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing audit database: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the database file.
func (s *Store) Path() string {
	return s.path
}

// SessionID returns the identifier grouping this run's entries.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Record inserts a setting change. The ID, SessionID, and CreatedAt
// are generated if empty.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - change: The change to record
//
// Returns:
//   - error: If the insert fails
func (s *Store) Record(ctx context.Context, change *SettingChange) error {
	if change.ID == "" {
		change.ID = "chg-" + uuid.NewString()[:8]
	}
	if change.SessionID == "" {
		change.SessionID = s.sessionID
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}

	verified := 0
	if change.Verified {
		verified = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO setting_changes
		 (id, session_id, camera, setting, requested_value, actual_value, verified, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		change.ID, change.SessionID, change.Camera, change.Setting,
		change.RequestedValue, nullableString(change.ActualValue),
		verified, change.Source,
		change.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting setting change: %w", err)
	}

	return nil
}

// Recent returns the most recent setting changes for a camera,
// newest first.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - camera: Camera identifier, or "" for all cameras
//   - limit: Maximum rows (defaults to 50, capped at 200)
//
// Returns:
//   - []SettingChange: Matching entries
//   - error: If the query fails
func (s *Store) Recent(ctx context.Context, camera string, limit int) ([]SettingChange, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT id, session_id, camera, setting, requested_value, actual_value, verified, source, created_at
	          FROM setting_changes`
	var args []any
	if camera != "" {
		query += ` WHERE camera = ?`
		args = append(args, camera)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying setting changes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var changes []SettingChange
	for rows.Next() {
		var (
			c         SettingChange
			actual    sql.NullString
			verified  int
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Camera, &c.Setting,
			&c.RequestedValue, &actual, &verified, &c.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning setting change: %w", err)
		}
		c.ActualValue = actual.String
		c.Verified = verified != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			c.CreatedAt = t
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating setting changes: %w", err)
	}

	return changes, nil
}

// HealthCheck verifies the database is accessible and functioning.
func (s *Store) HealthCheck(ctx context.Context) error {
	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("audit health check failed: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
