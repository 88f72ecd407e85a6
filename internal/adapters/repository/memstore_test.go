package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/GoodFrogman7/coach-ai/internal/adapters/repository"
	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

func sessionRecord(id string, overall float64) repository.SessionRecord {
	return repository.SessionRecord{
		Summary: types.SessionSummary{
			SessionID:    id,
			OverallScore: overall,
			PhaseScores:  map[string]float64{"contact": overall},
		},
	}
}

func TestMemStore_Sessions(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an empty in-memory store", t, func() {
		store := repository.NewMemStore()

		convey.Convey("Then looking back finds no sessions", func() {
			_, err := store.LatestBefore(ctx, "s1")
			convey.So(errors.Is(err, repository.ErrNoSessions), convey.ShouldBeTrue)
		})

		convey.Convey("Then an empty session id is rejected", func() {
			err := store.SaveSession(ctx, sessionRecord("", 80))
			convey.So(errors.Is(err, repository.ErrEmptySessionID), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given several saved sessions", t, func() {
		store := repository.NewMemStore()
		convey.So(store.SaveSession(ctx, sessionRecord("s1", 70)), convey.ShouldBeNil)
		convey.So(store.SaveSession(ctx, sessionRecord("s3", 80)), convey.ShouldBeNil)
		convey.So(store.SaveSession(ctx, sessionRecord("s2", 75)), convey.ShouldBeNil)

		convey.Convey("Then the latest prior session wins, not just any", func() {
			rec, err := store.LatestBefore(ctx, "s3")
			convey.So(err, convey.ShouldBeNil)
			convey.So(rec.Summary.SessionID, convey.ShouldEqual, "s2")
		})

		convey.Convey("Then looking before the earliest finds nothing", func() {
			_, err := store.LatestBefore(ctx, "s1")
			convey.So(errors.Is(err, repository.ErrNoSessions), convey.ShouldBeTrue)
		})

		convey.Convey("Then ids list in ascending order", func() {
			ids, err := store.Sessions(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(ids, convey.ShouldResemble, []string{"s1", "s2", "s3"})
		})

		convey.Convey("Then saving the same id twice is rejected", func() {
			err := store.SaveSession(ctx, sessionRecord("s2", 99))
			convey.So(errors.Is(err, repository.ErrDuplicateSession), convey.ShouldBeTrue)
		})
	})
}

func TestMemStore_Ledger(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given appended outcome records", t, func() {
		store := repository.NewMemStore()
		records := []types.DrillOutcomeRecord{
			{ID: "o1", DrillName: "Mirror Posture Check", Delta: -2},
			{ID: "o2", DrillName: "Wall Contact Drill", Delta: 4},
		}
		convey.So(store.Append(ctx, records), convey.ShouldBeNil)

		convey.Convey("Then the ledger reads back in append order", func() {
			all, err := store.All(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(all, convey.ShouldHaveLength, 2)
			convey.So(all[0].ID, convey.ShouldEqual, "o1")
		})

		convey.Convey("Then the returned slice is a copy, not the ledger itself", func() {
			all, _ := store.All(ctx)
			all[0].Delta = 999
			again, _ := store.All(ctx)
			convey.So(again[0].Delta, convey.ShouldEqual, -2)
		})
	})
}
