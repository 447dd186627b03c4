package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pable/go-sb-features/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.Store, convey.ShouldBeTrue)
				convey.So(cfg.DBPath, convey.ShouldEndWith, "features.db")
				convey.So(cfg.CacheDir, convey.ShouldEndWith, "events")
				convey.So(cfg.OpenDataURL, convey.ShouldStartWith, "https://")
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("SBF_WORKERS", "3")
			_ = os.Setenv("SBF_DB_PATH", "/tmp/sb.db")
			_ = os.Setenv("SBF_LOG_LEVEL", "debug")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 3)
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/sb.db")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When a YAML file is given", func() {
			path := writeConfig(t, "workers: 6\nlog_format: json\nstore: false\ncache_dir: /tmp/sb-events\n")

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then its values are used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 6)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.Store, convey.ShouldBeFalse)
				convey.So(cfg.CacheDir, convey.ShouldEqual, "/tmp/sb-events")
			})

			convey.Convey("And env still wins over the file", func() {
				_ = os.Setenv("SBF_WORKERS", "2")
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx, path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the open-data URL is blank", func() {
			path := writeConfig(t, "open_data_url: \"\"\n")

			_, err := config.Load(ctx, path)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When workers is zero", func() {
			path := writeConfig(t, "workers: 0\n")

			_, err := config.Load(ctx, path)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sbfeatures.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, k := range []string{"SBF_CONFIG", "SBF_WORKERS", "SBF_DB_PATH", "SBF_LOG_LEVEL", "SBF_LOG_FORMAT", "SBF_STORE", "SBF_CACHE_DIR", "SBF_OPEN_DATA_URL"} {
		_ = os.Unsetenv(k)
	}
}
