// Package progression contains the player-facing models: completed
// sessions, per-scenario score records, the badge catalog, and permanent
// badge awards.
package progression

import (
	"time"

	"github.com/google/uuid"

	"github.com/kerian/fable/internal/domain/axis"
)

// Choice is one entry of a session's choice history: the single branch the
// player actually took. Choices without an axis or delta carry no compass
// effect.
type Choice struct {
	CompassAxis  string
	CompassDelta *float64
}

// Session is one playthrough of a scenario by one profile.
type Session struct {
	ID            string
	ProfileID     string
	ScenarioID    string
	ChoiceHistory []Choice
}

// AxisTotals sums the session's compass deltas per normalized axis.
// Choices with a blank axis or a nil delta contribute nothing.
func (s *Session) AxisTotals() axis.Scores {
	totals := axis.NewScores()
	for _, c := range s.ChoiceHistory {
		if c.CompassDelta == nil {
			continue
		}
		totals.Add(axis.Normalize(c.CompassAxis), *c.CompassDelta)
	}
	return totals
}

// UserProfile identifies a player and the age group that selects their
// badge-threshold table.
type UserProfile struct {
	ID       string
	AgeGroup string
}

// PlayerScenarioScore is the immutable record of one profile's playthrough
// of one scenario. At most one record exists per (ProfileID, ScenarioID);
// a second scoring attempt is rejected, never overwritten.
type PlayerScenarioScore struct {
	ID            string
	ProfileID     string
	ScenarioID    string
	GameSessionID string
	AxisScores    axis.Scores
}

// NewPlayerScenarioScore mints a score record for a completed session.
func NewPlayerScenarioScore(session *Session, scores axis.Scores) *PlayerScenarioScore {
	return &PlayerScenarioScore{
		ID:            uuid.NewString(),
		ProfileID:     session.ProfileID,
		ScenarioID:    session.ScenarioID,
		GameSessionID: session.ID,
		AxisScores:    scores,
	}
}

// Badge is one tier of one axis's achievement ladder for one age group.
// TierOrder ranks tiers within the ladder; the engine iterates in that
// order but does not require thresholds to be monotonic across tiers.
type Badge struct {
	ID            string
	AgeGroupID    string
	CompassAxisID string
	Tier          string
	TierOrder     int
	RequiredScore float64
	ImageID       string
}

// UserBadge is a permanent award. At most one exists per
// (UserProfileID, BadgeID); awards are never revoked even if later play
// drops the axis score back below the threshold.
type UserBadge struct {
	ID            string
	UserProfileID string
	BadgeID       string
	Axis          axis.ID
	TriggerValue  float64
	Threshold     float64
	EarnedAt      time.Time
}

// NewUserBadge mints an award for a badge whose threshold was crossed.
func NewUserBadge(profileID string, badge Badge, triggerValue float64, earnedAt time.Time) *UserBadge {
	return &UserBadge{
		ID:            uuid.NewString(),
		UserProfileID: profileID,
		BadgeID:       badge.ID,
		Axis:          axis.Normalize(badge.CompassAxisID),
		TriggerValue:  triggerValue,
		Threshold:     badge.RequiredScore,
		EarnedAt:      earnedAt,
	}
}
