package repository_test

import (
	"context"
	"testing"

	"github.com/kerian/fable/internal/adapters/repository"
	"github.com/kerian/fable/internal/domain/axis"
	"github.com/kerian/fable/internal/domain/progression"
	"github.com/kerian/fable/internal/domain/story"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStoreLookups(t *testing.T) {
	Convey("Given a store seeded with a scenario and a bundle", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		store.PutScenario(&story.Scenario{ID: "scn-1", Title: "The Orchard"})
		store.PutBundle(&story.ContentBundle{ID: "bundle-1", ScenarioIDs: []string{"scn-1"}})

		Convey("Then known IDs resolve", func() {
			scenario, err := store.GetByID(ctx, "scn-1")
			So(err, ShouldBeNil)
			So(scenario.Title, ShouldEqual, "The Orchard")

			bundle, err := store.Bundles().GetByID(ctx, "bundle-1")
			So(err, ShouldBeNil)
			So(bundle.ScenarioIDs, ShouldResemble, []string{"scn-1"})
		})

		Convey("Then unknown IDs return ErrNotFound", func() {
			_, err := store.GetByID(ctx, "nope")
			So(err, ShouldEqual, repository.ErrNotFound)

			_, err = store.Bundles().GetByID(ctx, "nope")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestMemoryScoreStore(t *testing.T) {
	Convey("Given an empty score store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		score := &progression.PlayerScenarioScore{
			ID:         "rec-1",
			ProfileID:  "profile-1",
			ScenarioID: "scn-1",
			AxisScores: axis.Scores{"honesty": 0.5},
		}

		Convey("When a record is added", func() {
			So(store.Add(ctx, score), ShouldBeNil)

			Convey("Then it is retrievable by pair and by profile", func() {
				got, err := store.GetByProfileAndScenario(ctx, "profile-1", "scn-1")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "rec-1")

				all, err := store.GetByProfileID(ctx, "profile-1")
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
			})

			Convey("And a second record for the same pair is rejected", func() {
				dup := &progression.PlayerScenarioScore{
					ID:         "rec-2",
					ProfileID:  "profile-1",
					ScenarioID: "scn-1",
				}
				So(store.Add(ctx, dup), ShouldEqual, repository.ErrDuplicate)

				got, err := store.GetByProfileAndScenario(ctx, "profile-1", "scn-1")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "rec-1")
			})

			Convey("And the same scenario for another profile is fine", func() {
				other := &progression.PlayerScenarioScore{
					ID:         "rec-3",
					ProfileID:  "profile-2",
					ScenarioID: "scn-1",
				}
				So(store.Add(ctx, other), ShouldBeNil)
			})
		})

		Convey("When nothing was scored", func() {
			Convey("Then pair lookup reports ErrNotFound", func() {
				_, err := store.GetByProfileAndScenario(ctx, "profile-1", "scn-1")
				So(err, ShouldEqual, repository.ErrNotFound)
			})

			Convey("And profile listing is empty", func() {
				all, err := store.GetByProfileID(ctx, "profile-1")
				So(err, ShouldBeNil)
				So(all, ShouldBeEmpty)
			})
		})
	})
}

func TestMemoryBadgeStores(t *testing.T) {
	Convey("Given a store with a badge catalog", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		store.PutBadge(progression.Badge{ID: "b-1", AgeGroupID: "kids", CompassAxisID: "honesty", Tier: "bronze", TierOrder: 1, RequiredScore: 10})
		store.PutBadge(progression.Badge{ID: "b-2", AgeGroupID: "kids", CompassAxisID: "honesty", Tier: "silver", TierOrder: 2, RequiredScore: 25})

		Convey("Then the catalog resolves per age group", func() {
			catalog, err := store.GetByAgeGroup(ctx, "kids")
			So(err, ShouldBeNil)
			So(catalog, ShouldHaveLength, 2)
		})

		Convey("And an unknown age group yields an empty catalog, not an error", func() {
			catalog, err := store.GetByAgeGroup(ctx, "elders")
			So(err, ShouldBeNil)
			So(catalog, ShouldBeEmpty)
		})

		Convey("When an award is persisted twice for the same profile and badge", func() {
			awards := store.UserBadges()
			first := &progression.UserBadge{ID: "ub-1", UserProfileID: "profile-1", BadgeID: "b-1"}
			second := &progression.UserBadge{ID: "ub-2", UserProfileID: "profile-1", BadgeID: "b-1"}

			So(awards.Add(ctx, first), ShouldBeNil)
			So(awards.Add(ctx, second), ShouldEqual, repository.ErrDuplicate)

			Convey("Then exactly one award survives", func() {
				held, err := awards.GetByUserProfileID(ctx, "profile-1")
				So(err, ShouldBeNil)
				So(held, ShouldHaveLength, 1)
				So(held[0].ID, ShouldEqual, "ub-1")
			})
		})
	})
}
