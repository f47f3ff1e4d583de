package config_test

import (
	"testing"

	"github.com/classrank/classrank/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New()

		Convey("Then the defaults are sensible", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.MinWeeklySample, ShouldEqual, 3)
			So(cfg.MaxLeaderboardLimit, ShouldEqual, 100)
			So(cfg.ShardCount, ShouldEqual, 8)
			So(cfg.RolloverEnabled, ShouldBeFalse)
			So(cfg.RolloverGraceMinutes, ShouldEqual, 5)
			So(cfg.OpenRoster, ShouldBeFalse)
			So(cfg.Teachers, ShouldBeEmpty)
		})
	})
}
