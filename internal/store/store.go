// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/decodeur/internal/logging"
	"github.com/verte-zerg/decodeur/internal/model"
	"github.com/verte-zerg/decodeur/internal/progress"

	_ "modernc.org/sqlite" // SQLite driver.
)

// StorageKey is the fixed key of the persisted snapshot.
const StorageKey = "decodeur-facial-storage"

// SnapshotVersion tags the snapshot schema.
const SnapshotVersion = 1

// Sentinel errors for session completion.
var (
	ErrEmptySession      = errors.New("store: session has no answers")
	ErrSessionIncomplete = errors.New("store: session has unanswered questions")
)

// Store wraps SQLite access for the snapshot and session history.
type Store struct {
	db     *sql.DB
	logger logrus.FieldLogger
	now    func() time.Time
}

// Open opens or creates the SQLite database and applies migrations. A nil
// logger discards log output.
func Open(path string, logger logrus.FieldLogger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	store := &Store{db: db, logger: logger, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			level INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			questions INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			response_time_ms INTEGER NOT NULL,
			best_run INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_emotion_stats (
			session_id TEXT NOT NULL,
			emotion_id TEXT NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			response_time_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, emotion_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_emotion_stats_emotion ON session_emotion_stats(emotion_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultSnapshot is the state used on first run or when the stored
// snapshot cannot be read.
func DefaultSnapshot() model.Snapshot {
	return model.Snapshot{
		Version:  SnapshotVersion,
		User:     model.DefaultUser(),
		Progress: progress.New(),
	}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LoadSnapshot returns the persisted state. Missing or unreadable data
// yields the default snapshot; failures are logged, not returned.
func (s *Store) LoadSnapshot(ctx context.Context) model.Snapshot {
	return s.loadSnapshot(ctx, s.db)
}

func (s *Store) loadSnapshot(ctx context.Context, q querier) model.Snapshot {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, StorageKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSnapshot()
	}
	if err != nil {
		s.logger.WithError(err).Warn("failed to read snapshot; using defaults")
		return DefaultSnapshot()
	}
	snap, err := decodeSnapshot([]byte(raw))
	if err != nil {
		s.logger.WithError(err).Warn("failed to decode snapshot; using defaults")
		return DefaultSnapshot()
	}
	return snap
}

// SaveSnapshot replaces the persisted state.
func (s *Store) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	return s.saveSnapshot(ctx, s.db, snap)
}

func (s *Store) saveSnapshot(ctx context.Context, q querier, snap model.Snapshot) error {
	snap.Version = SnapshotVersion
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		StorageKey, string(data), s.now().UTC().Format(time.RFC3339Nano))
	return err
}

func decodeSnapshot(data []byte) (model.Snapshot, error) {
	snap := DefaultSnapshot()
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Version != SnapshotVersion {
		return model.Snapshot{}, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if snap.Progress.EmotionStats == nil {
		snap.Progress.EmotionStats = map[string]model.EmotionStat{}
	}
	if snap.Progress.Badges == nil {
		snap.Progress.Badges = []string{}
	}
	return snap, nil
}

// CompleteSession folds a finished session into the persisted progress and
// appends it to the history, in one transaction. It returns the progress
// before and after the update.
func (s *Store) CompleteSession(ctx context.Context, sess *model.Session, endedAt time.Time) (before, after model.Progress, err error) {
	if sess == nil || len(sess.Answers) == 0 {
		return model.Progress{}, model.Progress{}, ErrEmptySession
	}
	if !sess.Complete() || len(sess.Answers) < len(sess.Questions) {
		return model.Progress{}, model.Progress{}, ErrSessionIncomplete
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Progress{}, model.Progress{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	snap := s.loadSnapshot(ctx, tx)
	before = snap.Progress
	snap.Progress = progress.Apply(snap.Progress, sess.Answers, endedAt)
	if err = s.saveSnapshot(ctx, tx, snap); err != nil {
		return model.Progress{}, model.Progress{}, err
	}
	if err = insertHistory(ctx, tx, sess, endedAt); err != nil {
		return model.Progress{}, model.Progress{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.Progress{}, model.Progress{}, err
	}
	s.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"mode":       sess.Mode,
		"level":      sess.Difficulty,
		"answers":    len(sess.Answers),
		"correct":    sess.CorrectCount(),
	}).Info("session completed")
	return before, snap.Progress, nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, sess *model.Session, endedAt time.Time) error {
	type emotionRow struct {
		correct int
		total   int
		timeMs  int64
	}
	rows := map[string]*emotionRow{}
	order := []string{}
	var totalTime int64
	for _, a := range sess.Answers {
		totalTime += a.ResponseTimeMs
		row, ok := rows[a.CorrectAnswerID]
		if !ok {
			row = &emotionRow{}
			rows[a.CorrectAnswerID] = row
			order = append(order, a.CorrectAnswerID)
		}
		row.total++
		row.timeMs += a.ResponseTimeMs
		if a.IsCorrect {
			row.correct++
		}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, level, started_at, ended_at, questions, correct, response_time_ms, best_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		string(sess.Mode),
		sess.Difficulty,
		sess.StartedAt.UTC().Format(time.RFC3339Nano),
		endedAt.UTC().Format(time.RFC3339Nano),
		len(sess.Answers),
		sess.CorrectCount(),
		totalTime,
		progress.LongestRun(sess.Answers),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_emotion_stats (session_id, emotion_id, correct, total, response_time_ms)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, id := range order {
		row := rows[id]
		if _, err := stmt.ExecContext(ctx, sess.ID, id, row.correct, row.total, row.timeMs); err != nil {
			return err
		}
	}
	return nil
}

// ResetProgress clears the persisted progress and the session history in one
// transaction. The user profile is kept.
func (s *Store) ResetProgress(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	snap := s.loadSnapshot(ctx, tx)
	snap.Progress = progress.Reset()
	if err = s.saveSnapshot(ctx, tx, snap); err != nil {
		return err
	}
	for _, stmt := range []string{
		`DELETE FROM session_emotion_stats`,
		`DELETE FROM sessions`,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("progress and session history reset")
	return nil
}

// UpdateUser applies fn to the stored user profile.
func (s *Store) UpdateUser(ctx context.Context, fn func(*model.User)) (model.User, error) {
	snap := s.LoadSnapshot(ctx)
	fn(&snap.User)
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		return model.User{}, err
	}
	return snap.User, nil
}

// GetWeakEmotions aggregates emotion stats over the most recent sessions.
// A zero level includes every level.
func (s *Store) GetWeakEmotions(ctx context.Context, window, level int) ([]model.EmotionAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = 0 OR level = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT es.emotion_id, SUM(es.correct), SUM(es.total), SUM(es.response_time_ms)
	FROM session_emotion_stats es
	JOIN recent_sessions r ON r.id = es.session_id
	GROUP BY es.emotion_id`

	rows, err := s.db.QueryContext(ctx, query, level, level, window)
	if err != nil {
		return nil, err
	}
	return scanEmotionAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config, oldest
// first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Level > 0 {
		clauses = append(clauses, "level = ?")
		args = append(args, cfg.Level)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, mode, level, ended_at, correct, questions, response_time_ms, best_run
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var mode, endedAt string
		if err := rows.Scan(&agg.SessionID, &mode, &agg.Level, &endedAt, &agg.Correct, &agg.Total, &agg.ResponseTimeMs, &agg.BestRun); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.Mode = model.Mode(mode)
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListEmotionAggregatesForSessions aggregates per-emotion stats across
// sessions.
func (s *Store) ListEmotionAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.EmotionAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(sessionIDs)
	query := fmt.Sprintf(`SELECT emotion_id, SUM(correct), SUM(total), SUM(response_time_ms)
		FROM session_emotion_stats
		WHERE session_id IN (%s)
		GROUP BY emotion_id`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEmotionAggregates(rows)
}

// ListEmotionStatsForSessions returns per-session stats for selected
// emotions keyed by session id then emotion id.
func (s *Store) ListEmotionStatsForSessions(ctx context.Context, sessionIDs, emotionIDs []string) (map[string]map[string]model.EmotionAggregate, error) {
	if len(sessionIDs) == 0 || len(emotionIDs) == 0 {
		return map[string]map[string]model.EmotionAggregate{}, nil
	}
	idPlaceholders, args := inClause(sessionIDs)
	emotionPlaceholders, emotionArgs := inClause(emotionIDs)
	args = append(args, emotionArgs...)

	query := fmt.Sprintf(`SELECT session_id, emotion_id, correct, total, response_time_ms
		FROM session_emotion_stats
		WHERE session_id IN (%s) AND emotion_id IN (%s)`, idPlaceholders, emotionPlaceholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	result := map[string]map[string]model.EmotionAggregate{}
	for rows.Next() {
		var sessionID string
		var agg model.EmotionAggregate
		if err := rows.Scan(&sessionID, &agg.EmotionID, &agg.Correct, &agg.Total, &agg.ResponseTimeMs); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.EmotionAggregate{}
		}
		result[sessionID][agg.EmotionID] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanEmotionAggregates(rows *sql.Rows) ([]model.EmotionAggregate, error) {
	defer closeRows(rows)
	var result []model.EmotionAggregate
	for rows.Next() {
		var agg model.EmotionAggregate
		if err := rows.Scan(&agg.EmotionID, &agg.Correct, &agg.Total, &agg.ResponseTimeMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func inClause(values []string) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return strings.Join(placeholders, ","), args
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}
