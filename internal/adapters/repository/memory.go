package repository

import (
	"context"
	"sync"

	"github.com/kerian/fable/internal/domain/progression"
	"github.com/kerian/fable/internal/domain/story"
)

// scoreKey identifies the at-most-once scoring invariant.
type scoreKey struct {
	profileID  string
	scenarioID string
}

// awardKey identifies the at-most-once awarding invariant.
type awardKey struct {
	profileID string
	badgeID   string
}

// MemoryStore is a mutex-guarded in-memory implementation of every port.
// It backs tests and the calibration CLI; durable deployments use the
// sqlite subpackage instead.
type MemoryStore struct {
	mu        sync.RWMutex
	scenarios map[string]*story.Scenario
	bundles   map[string]*story.ContentBundle
	scores    map[scoreKey]*progression.PlayerScenarioScore
	badges    map[string][]progression.Badge // age group -> catalog
	awards    map[awardKey]*progression.UserBadge
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scenarios: make(map[string]*story.Scenario),
		bundles:   make(map[string]*story.ContentBundle),
		scores:    make(map[scoreKey]*progression.PlayerScenarioScore),
		badges:    make(map[string][]progression.Badge),
		awards:    make(map[awardKey]*progression.UserBadge),
	}
}

// PutScenario registers an authored scenario.
func (m *MemoryStore) PutScenario(scenario *story.Scenario) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios[scenario.ID] = scenario
}

// PutBundle registers a content bundle.
func (m *MemoryStore) PutBundle(bundle *story.ContentBundle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[bundle.ID] = bundle
}

// PutBadge adds a badge to its age group's catalog.
func (m *MemoryStore) PutBadge(badge progression.Badge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badges[badge.AgeGroupID] = append(m.badges[badge.AgeGroupID], badge)
}

// GetByID implements ScenarioSource.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*story.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	scenario, ok := m.scenarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	return scenario, nil
}

// Bundles exposes the store as a BundleSource. A separate view is needed
// because ScenarioSource and BundleSource share the GetByID name.
func (m *MemoryStore) Bundles() BundleSource {
	return bundleView{m}
}

type bundleView struct {
	store *MemoryStore
}

func (v bundleView) GetByID(ctx context.Context, id string) (*story.ContentBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	bundle, ok := v.store.bundles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return bundle, nil
}

// GetByProfileAndScenario implements ScoreStore.
func (m *MemoryStore) GetByProfileAndScenario(ctx context.Context, profileID, scenarioID string) (*progression.PlayerScenarioScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	score, ok := m.scores[scoreKey{profileID, scenarioID}]
	if !ok {
		return nil, ErrNotFound
	}
	return score, nil
}

// Add implements ScoreStore. The uniqueness check and the insert happen
// under one lock, so concurrent duplicate writes cannot both win.
func (m *MemoryStore) Add(ctx context.Context, score *progression.PlayerScenarioScore) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scoreKey{score.ProfileID, score.ScenarioID}
	if _, exists := m.scores[key]; exists {
		return ErrDuplicate
	}
	m.scores[key] = score
	return nil
}

// GetByProfileID implements ScoreStore.
func (m *MemoryStore) GetByProfileID(ctx context.Context, profileID string) ([]progression.PlayerScenarioScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []progression.PlayerScenarioScore
	for key, score := range m.scores {
		if key.profileID == profileID {
			out = append(out, *score)
		}
	}
	return out, nil
}

// GetByAgeGroup implements BadgeCatalog.
func (m *MemoryStore) GetByAgeGroup(ctx context.Context, ageGroupID string) ([]progression.Badge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	catalog := m.badges[ageGroupID]
	out := make([]progression.Badge, len(catalog))
	copy(out, catalog)
	return out, nil
}

type userBadgeView struct {
	store *MemoryStore
}

// UserBadges returns the award-store view. Needed because ScoreStore and
// UserBadgeStore both name their write Add.
func (m *MemoryStore) UserBadges() UserBadgeStore {
	return userBadgeView{m}
}

func (v userBadgeView) GetByUserProfileID(ctx context.Context, profileID string) ([]progression.UserBadge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	var out []progression.UserBadge
	for key, award := range v.store.awards {
		if key.profileID == profileID {
			out = append(out, *award)
		}
	}
	return out, nil
}

func (v userBadgeView) Add(ctx context.Context, award *progression.UserBadge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	key := awardKey{award.UserProfileID, award.BadgeID}
	if _, exists := v.store.awards[key]; exists {
		return ErrDuplicate
	}
	v.store.awards[key] = award
	return nil
}
