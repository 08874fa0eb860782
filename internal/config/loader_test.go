package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pulse/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadDefaults(t *testing.T) {
	ctx := context.Background()

	Convey("Given no configuration sources", t, func() {
		cfg, err := config.Load(ctx)

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.GenesisHeight, ShouldEqual, 1)
			So(cfg.BlockIntervalMS, ShouldEqual, 1000)
			So(cfg.MaxFeedbackKinds, ShouldEqual, 10)
			So(cfg.MaxHistogramBuckets, ShouldEqual, 10)
			So(cfg.MaxTextLen, ShouldEqual, 280)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	ctx := context.Background()

	Convey("Given PULSE_ environment overrides", t, func() {
		t.Setenv("PULSE_ADDR", ":7070")
		t.Setenv("PULSE_GENESIS_HEIGHT", "500")
		t.Setenv("PULSE_LOG_LEVEL", "debug")

		cfg, err := config.Load(ctx)

		Convey("Then they take effect over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.GenesisHeight, ShouldEqual, 500)
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.BlockIntervalMS, ShouldEqual, 1000)
		})
	})
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()

	Convey("Given a YAML config file via PULSE_CONFIG", t, func() {
		path := filepath.Join(t.TempDir(), "pulse.yaml")
		body := "addr: \":6060\"\nblock_interval_ms: 250\n"
		So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)
		t.Setenv("PULSE_CONFIG", path)

		Convey("Then the file values apply", func() {
			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.BlockIntervalMS, ShouldEqual, 250)
		})

		Convey("Then env vars still win over the file", func() {
			t.Setenv("PULSE_ADDR", ":5050")
			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
			So(cfg.BlockIntervalMS, ShouldEqual, 250)
		})
	})

	Convey("Given a missing config file", t, func() {
		t.Setenv("PULSE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		Convey("Then loading fails with ErrLoadConfig", func() {
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestLoadValidation(t *testing.T) {
	ctx := context.Background()

	Convey("Given invalid values", t, func() {
		cases := map[string]string{
			"PULSE_ADDR":                  "",
			"PULSE_BLOCK_INTERVAL_MS":     "0",
			"PULSE_MAX_FEEDBACK_KINDS":    "-1",
			"PULSE_MAX_HISTOGRAM_BUCKETS": "0",
		}

		for key, value := range cases {
			Convey("Then "+key+"="+value+" is rejected", func() {
				t.Setenv(key, value)
				_, err := config.Load(ctx)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		}
	})
}
