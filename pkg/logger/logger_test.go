package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFieldConstructors(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		Convey("Then each captures its key and value", func() {
			So(String("k", "v"), ShouldResemble, Field{Key: "k", Value: "v"})
			So(Int("n", 3), ShouldResemble, Field{Key: "n", Value: 3})
			So(Float64("f", 1.5), ShouldResemble, Field{Key: "f", Value: 1.5})

			err := errors.New("boom")
			So(Err(err), ShouldResemble, Field{Key: "error", Value: err})
		})
	})
}

func TestGlobalLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then Get returns it and Named derives from it", func() {
			So(Get(), ShouldNotBeNil)
			So(Named("calibrate"), ShouldNotBeNil)
		})

		Convey("Then logging at every level does not panic", func() {
			ctx := context.Background()
			log := Get()
			So(func() {
				log.Debug(ctx, "debug", String("k", "v"))
				log.Info(ctx, "info", Int("n", 1))
				log.Warn(ctx, "warn")
				log.Error(ctx, "error", Err(errors.New("boom")))
			}, ShouldNotPanic)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known names parse, case-insensitively", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelDebug)
			So(SetLevelString("warning"), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelWarn)
			So(SetLevelString(""), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelInfo)
		})

		Convey("Then unknown names are rejected", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}
