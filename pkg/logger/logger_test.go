package logger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/classrank/classrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)

			ctx := context.Background()
			So(func() {
				l.Debug(ctx, "debug message", logger.String("k", "v"))
				l.Info(ctx, "info message", logger.Int("n", 1))
				l.Warn(ctx, "warn message", logger.Float64("f", 1.5))
				l.Error(ctx, "error message", logger.Error(errors.New("boom")))
			}, ShouldNotPanic)
		})

		Convey("Then Named returns a scoped logger", func() {
			l := logger.Named("ledger")
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "named message")
			}, ShouldNotPanic)
		})

		Convey("Then Sync is a no-op", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Known levels parse", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", "INFO"} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Unknown levels are rejected", func() {
			So(logger.SetLevelString("chatty"), ShouldNotBeNil)
		})
	})
}

func TestFieldConstructors(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		Convey("Then each carries its key and value", func() {
			So(logger.String("a", "b").Key, ShouldEqual, "a")
			So(logger.Int("n", 3).Value, ShouldEqual, 3)
			So(logger.Bool("ok", true).Value, ShouldEqual, true)
			So(logger.Duration("d", time.Second).Value, ShouldEqual, time.Second)
			So(logger.Time("t", time.Unix(0, 0)).Key, ShouldEqual, "t")
			So(logger.Error(errors.New("x")).Key, ShouldEqual, "error")
		})
	})
}
