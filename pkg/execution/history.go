package execution

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// HistoryRecord is one persisted router invocation.
type HistoryRecord struct {
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	SkillName string         `json:"skill_name,omitempty"`
	Executed  bool           `json:"executed"`
	Success   bool           `json:"success"`
	Warning   string         `json:"warning,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	ElapsedMs int64          `json:"elapsed_ms"`
	CreatedAt time.Time      `json:"created_at"`
}

// HistoryStore is an append-only SQLite audit log of router
// invocations, independent of the learning aggregate.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (or creates) the history database at dbPath.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return store, nil
}

func (s *HistoryStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS executions (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		skill_name TEXT,
		executed INTEGER NOT NULL,
		success INTEGER NOT NULL,
		warning TEXT,
		arguments TEXT,
		elapsed_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_executions_skill ON executions(skill_name);
	CREATE INDEX IF NOT EXISTS idx_executions_created ON executions(created_at);
	`
	_, err := s.db.Exec(query)
	return err
}

// Record appends one result to the audit log.
func (s *HistoryStore) Record(ctx context.Context, result *ExecutionResult) error {
	argsJSON, _ := json.Marshal(result.ArgumentsUsed)

	query := `
		INSERT INTO executions (id, query, skill_name, executed, success, warning, arguments, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		result.ID, result.Query, result.SkillUsed,
		boolToInt(result.Executed), boolToInt(result.Success),
		result.Warning, string(argsJSON),
		result.Elapsed.Milliseconds(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record execution: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]*HistoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, query, skill_name, executed, success, warning, arguments, elapsed_ms, created_at
		FROM executions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var records []*HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		var executed, success int
		var skillName, warning, argsJSON sql.NullString
		var createdAt int64

		if err := rows.Scan(&rec.ID, &rec.Query, &skillName, &executed, &success,
			&warning, &argsJSON, &rec.ElapsedMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}

		rec.SkillName = skillName.String
		rec.Executed = executed != 0
		rec.Success = success != 0
		rec.Warning = warning.String
		rec.CreatedAt = time.Unix(createdAt, 0)
		if argsJSON.String != "" {
			_ = json.Unmarshal([]byte(argsJSON.String), &rec.Arguments)
		}

		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountBySkill returns per-skill invocation totals for executed runs.
func (s *HistoryStore) CountBySkill(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT skill_name, COUNT(*)
		FROM executions
		WHERE executed = 1 AND skill_name != ''
		GROUP BY skill_name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count executions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

// Close releases the database handle.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
