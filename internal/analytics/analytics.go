// Package analytics persists prompt usage counters in a local SQLite
// database. Tracking is optional: a disabled tracker accepts every call and
// reports zeroed statistics, so callers never branch on configuration.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/logger"
	"github.com/fastkit/fastkit/internal/models"
)

const dbFileName = "analytics.db"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS prompt_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt_id TEXT NOT NULL,
	success INTEGER NOT NULL,
	completion_time_ms INTEGER NOT NULL DEFAULT 0,
	tokens INTEGER NOT NULL DEFAULT 0,
	recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_prompt_usage_prompt_id ON prompt_usage(prompt_id);
`

// Tracker records and aggregates per-prompt usage events
type Tracker struct {
	db      *sql.DB
	enabled bool
	log     *zap.SugaredLogger
}

// NewTracker opens (and if needed initializes) the usage database under the
// library root. When enabled is false no database is touched.
func NewTracker(rootPath string, enabled bool) (*Tracker, error) {
	t := &Tracker{
		enabled: enabled,
		log:     logger.ForComponent("analytics"),
	}
	if !enabled {
		return t, nil
	}

	dbPath := filepath.Join(rootPath, dbFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.StorageError(fmt.Sprintf("open analytics database at %s", dbPath), err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.StorageError("initialize analytics schema", err)
	}

	t.db = db
	return t, nil
}

// Enabled reports whether usage events are being persisted
func (t *Tracker) Enabled() bool { return t.enabled }

// Close releases the underlying database handle
func (t *Tracker) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}

// RecordUsage stores one usage event. Disabled trackers accept the call and
// do nothing.
func (t *Tracker) RecordUsage(ctx context.Context, promptID string, success bool, completionTimeMs, tokens int) error {
	if !t.enabled {
		return nil
	}

	_, err := t.db.ExecContext(ctx,
		`INSERT INTO prompt_usage (prompt_id, success, completion_time_ms, tokens) VALUES (?, ?, ?, ?)`,
		promptID, boolToInt(success), completionTimeMs, tokens)
	if err != nil {
		return errors.StorageError("record prompt usage", err)
	}

	t.log.Debugw("recorded prompt usage", "prompt_id", promptID, "success", success)
	return nil
}

// Stats aggregates all recorded events for one prompt. A disabled tracker,
// or a prompt with no recorded usage, yields zeroed statistics.
func (t *Tracker) Stats(ctx context.Context, promptID string) (models.UsageStats, error) {
	var stats models.UsageStats
	if !t.enabled {
		return stats, nil
	}

	row := t.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(AVG(completion_time_ms), 0),
			COALESCE(AVG(tokens), 0)
		FROM prompt_usage
		WHERE prompt_id = ?`, promptID)

	if err := row.Scan(&stats.TotalUses, &stats.SuccessfulUses, &stats.AvgCompletionTimeMs, &stats.AvgTokens); err != nil {
		return models.UsageStats{}, errors.StorageError("aggregate prompt usage", err)
	}
	return stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
