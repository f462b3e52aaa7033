// Package repository defines the storage ports the engine reads and writes
// through, plus in-memory implementations used in tests and tooling.
//
// The engine performs existence checks before writing, but those are a
// fast path only: the authoritative at-most-once guarantees belong to the
// store. Every implementation must reject a second PlayerScenarioScore for
// the same (profile, scenario) and a second UserBadge for the same
// (profile, badge) with ErrDuplicate.
package repository

import (
	"context"

	"github.com/kerian/fable/internal/domain/progression"
	"github.com/kerian/fable/internal/domain/story"
)

// ScenarioSource resolves authored scenarios by ID.
type ScenarioSource interface {
	// GetByID returns the scenario or ErrNotFound.
	GetByID(ctx context.Context, id string) (*story.Scenario, error)
}

// BundleSource resolves content bundles by ID.
type BundleSource interface {
	// GetByID returns the bundle or ErrNotFound.
	GetByID(ctx context.Context, id string) (*story.ContentBundle, error)
}

// ScoreStore persists per-scenario score records.
type ScoreStore interface {
	// GetByProfileAndScenario returns the existing record for the pair,
	// or ErrNotFound if the scenario has not been scored for the profile.
	GetByProfileAndScenario(ctx context.Context, profileID, scenarioID string) (*progression.PlayerScenarioScore, error)

	// Add persists a new record. Returns ErrDuplicate if a record for the
	// same (profile, scenario) already exists; records are never updated.
	Add(ctx context.Context, score *progression.PlayerScenarioScore) error

	// GetByProfileID returns every score record of a profile, for
	// cross-session aggregation.
	GetByProfileID(ctx context.Context, profileID string) ([]progression.PlayerScenarioScore, error)
}

// BadgeCatalog resolves the badge threshold table per age group.
type BadgeCatalog interface {
	// GetByAgeGroup returns the badges configured for an age group.
	// An unknown age group returns an empty slice, not an error.
	GetByAgeGroup(ctx context.Context, ageGroupID string) ([]progression.Badge, error)
}

// UserBadgeStore persists permanent badge awards.
type UserBadgeStore interface {
	// GetByUserProfileID returns every award a profile holds.
	GetByUserProfileID(ctx context.Context, profileID string) ([]progression.UserBadge, error)

	// Add persists a new award. Returns ErrDuplicate if the profile
	// already holds the badge; awards are never updated or revoked.
	Add(ctx context.Context, award *progression.UserBadge) error
}
