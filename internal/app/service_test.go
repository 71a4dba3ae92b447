package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/okian/scorebook/internal/app"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/outcome"
	"github.com/okian/scorebook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["queueSize"], ShouldEqual, 1024)
			So(stats["dedupeSize"], ShouldEqual, 50_000)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithFetchSchedule("0 6 * * *"),
		)

		Convey("Then the options are applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50_000)
			So(stats["dedupeSize"], ShouldEqual, 25_000)
			So(stats["fetchSchedule"], ShouldEqual, "0 6 * * *")
		})
	})

	Convey("Given non-positive options", t, func() {
		svc := service.New(service.WithWorkerCount(0), service.WithQueueSize(-1))

		Convey("Then the defaults are kept", func() {
			So(svc.GetStats()["queueSize"], ShouldEqual, 1024)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
				So(stats["storedGames"], ShouldEqual, 0)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given an invalid fetch schedule", t, func() {
		svc := service.New(service.WithFetchSchedule("every day"))

		Convey("Then start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a missing roster file", t, func() {
		svc := service.New(service.WithRosterPath(t.TempDir() + "/missing.yaml"))

		Convey("Then start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it is no longer started", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And enqueueing fails", func() {
				_, err := svc.Enqueue(context.Background(), model.GameLog{GameID: "g"})
				So(err, ShouldEqual, service.ErrNotStarted)
			})

			Convey("And stopping again is a no-op", func() {
				So(svc.Stop, ShouldNotPanic)
			})
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then lookups report it", func() {
			_, err := svc.Scorecard(ctx, "g")
			So(err, ShouldEqual, service.ErrNotStarted)
			_, err = svc.UnknownPlays(ctx, 10)
			So(err, ShouldEqual, service.ErrNotStarted)
			_, err = svc.IngestDate(ctx, time.Now())
			So(err, ShouldEqual, service.ErrNotStarted)
		})

		Convey("Then deduplication still works", func() {
			So(svc.SeenAndRecord(ctx, "g1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "g1"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, 1)
			svc.Unrecord(ctx, "g1")
			So(svc.Size(), ShouldEqual, 0)
		})

		Convey("Then classification still works", func() {
			o := svc.Classify(ctx, outcome.Input{Code: model.EventStrikeout, Description: "Jo strikes out swinging."})
			So(o.Kind, ShouldEqual, outcome.KindStrikeoutSwinging)
		})
	})
}
