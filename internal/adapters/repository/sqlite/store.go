// Package sqlite provides durable SQLite-backed implementations of the
// score, badge-catalog and user-badge ports.
//
// The unique indexes on (profile_id, scenario_id) and
// (user_profile_id, badge_id) are the authoritative guards for the
// at-most-once invariants; the engine's own existence checks only shortcut
// the common case. Constraint violations surface as repository.ErrDuplicate
// so callers cannot tell the two layers apart.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/kerian/fable/internal/adapters/repository"
	"github.com/kerian/fable/internal/adapters/repository/sqlite/migrations"
	"github.com/kerian/fable/internal/domain/axis"
	"github.com/kerian/fable/internal/domain/progression"
)

// Store persists player progression state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// isUniqueViolation reports whether err came from a unique or primary-key
// constraint.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func encodeScores(scores axis.Scores) (string, error) {
	raw := make(map[string]float64, len(scores))
	for id, v := range scores {
		raw[id.String()] = v
	}
	body, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode axis scores: %w", err)
	}
	return string(body), nil
}

func decodeScores(body string) (axis.Scores, error) {
	raw := make(map[string]float64)
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode axis scores: %w", err)
	}
	scores := axis.NewScores()
	for name, v := range raw {
		scores.Add(axis.Normalize(name), v)
	}
	return scores, nil
}

// GetByProfileAndScenario implements repository.ScoreStore.
func (s *Store) GetByProfileAndScenario(ctx context.Context, profileID, scenarioID string) (*progression.PlayerScenarioScore, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, profile_id, scenario_id, game_session_id, axis_scores
FROM player_scenario_scores
WHERE profile_id = ? AND scenario_id = ?`, profileID, scenarioID)

	var record progression.PlayerScenarioScore
	var encoded string
	err := row.Scan(&record.ID, &record.ProfileID, &record.ScenarioID, &record.GameSessionID, &encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query score: %w", err)
	}
	record.AxisScores, err = decodeScores(encoded)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Add implements repository.ScoreStore.
func (s *Store) Add(ctx context.Context, score *progression.PlayerScenarioScore) error {
	encoded, err := encodeScores(score.AxisScores)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO player_scenario_scores (id, profile_id, scenario_id, game_session_id, axis_scores, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		score.ID, score.ProfileID, score.ScenarioID, score.GameSessionID, encoded, toMillis(time.Now()))
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// GetByProfileID implements repository.ScoreStore.
func (s *Store) GetByProfileID(ctx context.Context, profileID string) ([]progression.PlayerScenarioScore, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, profile_id, scenario_id, game_session_id, axis_scores
FROM player_scenario_scores
WHERE profile_id = ?
ORDER BY created_at`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []progression.PlayerScenarioScore
	for rows.Next() {
		var record progression.PlayerScenarioScore
		var encoded string
		if err := rows.Scan(&record.ID, &record.ProfileID, &record.ScenarioID, &record.GameSessionID, &encoded); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		record.AxisScores, err = decodeScores(encoded)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return out, nil
}

// PutBadge inserts or replaces a catalog badge. Catalog rows are reference
// data loaded by tooling, so replacement is allowed here, unlike the
// append-only player records.
func (s *Store) PutBadge(ctx context.Context, badge progression.Badge) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT OR REPLACE INTO badges (id, age_group_id, compass_axis_id, tier, tier_order, required_score, image_id)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		badge.ID, badge.AgeGroupID, badge.CompassAxisID, badge.Tier, badge.TierOrder, badge.RequiredScore, badge.ImageID)
	if err != nil {
		return fmt.Errorf("upsert badge: %w", err)
	}
	return nil
}

// GetByAgeGroup implements repository.BadgeCatalog.
func (s *Store) GetByAgeGroup(ctx context.Context, ageGroupID string) ([]progression.Badge, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, age_group_id, compass_axis_id, tier, tier_order, required_score, image_id
FROM badges
WHERE age_group_id = ?
ORDER BY compass_axis_id, tier_order`, ageGroupID)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []progression.Badge
	for rows.Next() {
		var b progression.Badge
		if err := rows.Scan(&b.ID, &b.AgeGroupID, &b.CompassAxisID, &b.Tier, &b.TierOrder, &b.RequiredScore, &b.ImageID); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate badges: %w", err)
	}
	return out, nil
}

// UserBadges returns the award-store view of this database.
func (s *Store) UserBadges() repository.UserBadgeStore {
	return userBadgeStore{s}
}

type userBadgeStore struct {
	store *Store
}

func (v userBadgeStore) GetByUserProfileID(ctx context.Context, profileID string) ([]progression.UserBadge, error) {
	rows, err := v.store.sqlDB.QueryContext(ctx, `
SELECT id, user_profile_id, badge_id, axis, trigger_value, threshold, earned_at
FROM user_badges
WHERE user_profile_id = ?
ORDER BY earned_at`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query user badges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []progression.UserBadge
	for rows.Next() {
		var award progression.UserBadge
		var axisName string
		var earnedAt int64
		if err := rows.Scan(&award.ID, &award.UserProfileID, &award.BadgeID, &axisName, &award.TriggerValue, &award.Threshold, &earnedAt); err != nil {
			return nil, fmt.Errorf("scan user badge: %w", err)
		}
		award.Axis = axis.Normalize(axisName)
		award.EarnedAt = fromMillis(earnedAt)
		out = append(out, award)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user badges: %w", err)
	}
	return out, nil
}

func (v userBadgeStore) Add(ctx context.Context, award *progression.UserBadge) error {
	_, err := v.store.sqlDB.ExecContext(ctx, `
INSERT INTO user_badges (id, user_profile_id, badge_id, axis, trigger_value, threshold, earned_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		award.ID, award.UserProfileID, award.BadgeID, award.Axis.String(),
		award.TriggerValue, award.Threshold, toMillis(award.EarnedAt))
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user badge: %w", err)
	}
	return nil
}
