package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/scorebook/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.KeyPlayThreshold, convey.ShouldEqual, 0.25)
			convey.So(cfg.FetchSchedule, convey.ShouldBeEmpty)
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 30*time.Second)
		})

		convey.Convey("Then the defaults are valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New(context.Background())

		cases := []struct {
			name   string
			mutate func(*config.Config)
			want   string
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }, "addr"},
			{"zero queue", func(c *config.Config) { c.QueueSize = 0 }, "queue_size"},
			{"zero workers", func(c *config.Config) { c.WorkerCount = 0 }, "worker_count"},
			{"negative dedupe", func(c *config.Config) { c.DedupeSize = -1 }, "dedupe_size"},
			{"empty db path", func(c *config.Config) { c.DBPath = "" }, "db_path"},
			{"zero threshold", func(c *config.Config) { c.KeyPlayThreshold = 0 }, "key_play_threshold"},
			{"threshold above one", func(c *config.Config) { c.KeyPlayThreshold = 1.5 }, "key_play_threshold"},
			{"zero rps", func(c *config.Config) { c.FetchRPS = 0 }, "fetch_rps"},
			{"zero timeout", func(c *config.Config) { c.FetchTimeoutMS = 0 }, "fetch_timeout_ms"},
			{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }, "log_format"},
			{"bad schedule", func(c *config.Config) { c.FetchSchedule = "every day" }, "fetch_schedule"},
		}
		for _, tc := range cases {
			convey.Convey("When it has "+tc.name, func() {
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then validation fails naming the key", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
				})
			})
		}

		convey.Convey("When the schedule is a standard cron spec", func() {
			cfg.FetchSchedule = "15 6 * * *"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the schedule is a descriptor", func() {
			cfg.FetchSchedule = "@daily"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
