// Package service orchestrates the scoring and badge progression engine:
// calibrating badge thresholds from scenario graphs, scoring completed
// sessions, aggregating cross-session totals and issuing permanent awards.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	repository "github.com/kerian/fable/internal/adapters/repository"
	"github.com/kerian/fable/internal/domain/axis"
	"github.com/kerian/fable/internal/domain/paths"
	"github.com/kerian/fable/internal/domain/percentile"
	"github.com/kerian/fable/internal/domain/progression"
	"github.com/kerian/fable/pkg/logger"
	"github.com/kerian/fable/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// Service implements the engine operations over the repository ports.
// It is synchronous and stateless between calls; durable state lives
// behind the ports, whose uniqueness constraints are the authoritative
// guard against concurrent duplicate writes.
type Service struct {
	scenarios repository.ScenarioSource
	bundles   repository.BundleSource
	scores    repository.ScoreStore
	catalog   repository.BadgeCatalog
	awards    repository.UserBadgeStore

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithClock sets the time source used for award timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates the engine service over the given ports.
func New(
	scenarios repository.ScenarioSource,
	bundles repository.BundleSource,
	scores repository.ScoreStore,
	catalog repository.BadgeCatalog,
	awards repository.UserBadgeStore,
	opts ...Option,
) *Service {
	s := &Service{
		scenarios: scenarios,
		bundles:   bundles,
		scores:    scores,
		catalog:   catalog,
		awards:    awards,
		now:       time.Now,
		logger:    noopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScoreSession computes the realized per-axis totals of one completed
// session and persists them as an immutable PlayerScenarioScore.
//
// Returns (nil, nil) when the profile already has a score record for the
// session's scenario: the at-most-once guarantee makes a repeat attempt a
// no-op for the caller, not an error. The pre-check here is a fast path;
// a concurrent writer losing the race gets ErrDuplicate from the store
// and is folded into the same no-op.
func (s *Service) ScoreSession(ctx context.Context, session *progression.Session, profile *progression.UserProfile) (*progression.PlayerScenarioScore, error) {
	existing, err := s.scores.GetByProfileAndScenario(ctx, profile.ID, session.ScenarioID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("check existing score: %w", err)
	}
	if existing != nil {
		metrics.RecordSessionDuplicate()
		s.logger.Debug(ctx, "scenario already scored for profile",
			logger.String("profile_id", profile.ID),
			logger.String("scenario_id", session.ScenarioID))
		return nil, nil
	}

	record := progression.NewPlayerScenarioScore(session, session.AxisTotals())
	if err := s.scores.Add(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent scorer; same no-op as above.
			metrics.RecordSessionDuplicate()
			return nil, nil
		}
		metrics.RecordStoreError()
		return nil, fmt.Errorf("persist score: %w", err)
	}

	metrics.RecordSessionScored()
	s.logger.Info(ctx, "session scored",
		logger.String("profile_id", profile.ID),
		logger.String("scenario_id", session.ScenarioID),
		logger.Int("axes", len(record.AxisScores)))
	return record, nil
}

// ProfileAxisTotals sums every score record of a profile per axis. The
// result feeds AwardBadges, which stays agnostic to how totals were built.
func (s *Service) ProfileAxisTotals(ctx context.Context, profileID string) (axis.Scores, error) {
	records, err := s.scores.GetByProfileID(ctx, profileID)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("load score records: %w", err)
	}
	totals := axis.NewScores()
	for _, record := range records {
		totals.Merge(record.AxisScores)
	}
	return totals, nil
}

// AwardBadges issues a permanent UserBadge for every catalog badge of the
// profile's age group whose threshold the cumulative axis score now meets
// and that the profile does not already hold. If one call crosses several
// tiers at once, every newly qualified tier is awarded together.
// Already-held badges are silently skipped; an unknown age group yields an
// empty catalog and no awards.
func (s *Service) AwardBadges(ctx context.Context, profile *progression.UserProfile, axisScores axis.Scores) ([]progression.UserBadge, error) {
	catalog, err := s.catalog.GetByAgeGroup(ctx, profile.AgeGroup)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("load badge catalog: %w", err)
	}
	if len(catalog) == 0 {
		s.logger.Warn(ctx, "no badge catalog for age group",
			logger.String("age_group", profile.AgeGroup))
		return nil, nil
	}

	held, err := s.awards.GetByUserProfileID(ctx, profile.ID)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("load held badges: %w", err)
	}
	earned := make(map[string]struct{}, len(held))
	for _, award := range held {
		earned[award.BadgeID] = struct{}{}
	}

	ladders := groupByAxis(catalog)

	var awarded []progression.UserBadge
	for _, id := range sortedAxes(axisScores) {
		ladder, ok := ladders[id]
		if !ok {
			s.logger.Warn(ctx, "no badge ladder for axis",
				logger.String("age_group", profile.AgeGroup),
				logger.String("axis", id.String()))
			continue
		}
		score := axisScores[id]
		for _, badge := range ladder {
			if badge.RequiredScore > score {
				continue
			}
			if _, has := earned[badge.ID]; has {
				continue
			}
			award := progression.NewUserBadge(profile.ID, badge, score, s.now())
			if err := s.awards.Add(ctx, award); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					// A concurrent call awarded it first; skip silently.
					continue
				}
				metrics.RecordStoreError()
				return nil, fmt.Errorf("persist badge award: %w", err)
			}
			earned[badge.ID] = struct{}{}
			awarded = append(awarded, *award)
			s.logger.Info(ctx, "badge awarded",
				logger.String("profile_id", profile.ID),
				logger.String("badge_id", badge.ID),
				logger.String("axis", id.String()),
				logger.Float64("trigger", score),
				logger.Float64("threshold", badge.RequiredScore))
		}
	}

	metrics.RecordBadgesAwarded(len(awarded))
	return awarded, nil
}

// CalculateBadgeThresholds enumerates every path of every scenario in a
// bundle, pools the path scores per axis across the whole bundle, and
// estimates the requested percentiles over each pool. Content designers
// use the result to place Badge.RequiredScore values.
func (s *Service) CalculateBadgeThresholds(ctx context.Context, bundleID string, percentiles []float64) (map[axis.ID]map[float64]float64, error) {
	if bundleID == "" {
		return nil, fmt.Errorf("%w: bundle id must not be blank", ErrInvalidInput)
	}
	if len(percentiles) == 0 {
		return nil, fmt.Errorf("%w: percentile list must not be empty", ErrInvalidInput)
	}
	for _, p := range percentiles {
		if p < 0 || p > 100 {
			return nil, fmt.Errorf("%w: percentile %v outside [0,100]", ErrInvalidInput, p)
		}
	}

	started := s.now()

	bundle, err := s.bundles.GetByID(ctx, bundleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("content bundle %q: %w", bundleID, repository.ErrNotFound)
		}
		metrics.RecordStoreError()
		return nil, fmt.Errorf("load content bundle: %w", err)
	}

	pooled := make(map[axis.ID][]float64)
	for _, scenarioID := range bundle.ScenarioIDs {
		scenario, err := s.scenarios.GetByID(ctx, scenarioID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// One bad reference must not fail the whole bundle.
				metrics.RecordScenarioSkipped()
				s.logger.Warn(ctx, "bundle references unknown scenario",
					logger.String("bundle_id", bundleID),
					logger.String("scenario_id", scenarioID))
				continue
			}
			metrics.RecordStoreError()
			return nil, fmt.Errorf("load scenario %q: %w", scenarioID, err)
		}

		enumStarted := s.now()
		scenarioPaths := paths.Enumerate(scenario)
		metrics.RecordEnumerationDuration(float64(s.now().Sub(enumStarted).Nanoseconds()) / nanosecondsPerMillisecond)
		metrics.RecordPathsEnumerated(len(scenarioPaths))

		for _, path := range scenarioPaths {
			for id, score := range path {
				pooled[id] = append(pooled[id], score)
			}
		}
	}

	thresholds := make(map[axis.ID]map[float64]float64, len(pooled))
	for id, samples := range pooled {
		thresholds[id] = percentile.Estimate(samples, percentiles)
	}

	metrics.RecordCalibrationDuration(float64(s.now().Sub(started).Nanoseconds()) / nanosecondsPerMillisecond)
	s.logger.Info(ctx, "bundle thresholds calibrated",
		logger.String("bundle_id", bundleID),
		logger.Int("axes", len(thresholds)),
		logger.Int("scenarios", len(bundle.ScenarioIDs)))
	return thresholds, nil
}

// groupByAxis buckets catalog badges by normalized axis, each bucket
// ordered by TierOrder ascending.
func groupByAxis(catalog []progression.Badge) map[axis.ID][]progression.Badge {
	ladders := make(map[axis.ID][]progression.Badge)
	for _, badge := range catalog {
		id := axis.Normalize(badge.CompassAxisID)
		if id.IsZero() {
			continue
		}
		ladders[id] = append(ladders[id], badge)
	}
	for id := range ladders {
		ladder := ladders[id]
		sort.SliceStable(ladder, func(i, j int) bool {
			return ladder[i].TierOrder < ladder[j].TierOrder
		})
	}
	return ladders
}

// sortedAxes returns the score map's axes in stable order so awards come
// out deterministically.
func sortedAxes(scores axis.Scores) []axis.ID {
	out := make([]axis.ID, 0, len(scores))
	for id := range scores {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// noopLogger is the default until WithLogger is applied.
type noopLogger struct{}

func (noopLogger) Info(context.Context, string, ...logger.Field)  {}
func (noopLogger) Error(context.Context, string, ...logger.Field) {}
func (noopLogger) Debug(context.Context, string, ...logger.Field) {}
func (noopLogger) Warn(context.Context, string, ...logger.Field)  {}
func (n noopLogger) Named(string) logger.Logger                   { return n }
