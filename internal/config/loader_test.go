package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/drivefit/riskd/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.AlertBackend, convey.ShouldEqual, config.AlertLog)
				convey.So(cfg.Classifier, convey.ShouldEqual, config.ClassifierRules)
				convey.So(cfg.QueryWindow, convey.ShouldEqual, 10)
				convey.So(cfg.DynamoTable, convey.ShouldEqual, "HealthRiskRecords")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RISKD_ADDR", ":8080")
			_ = os.Setenv("RISKD_STORE_BACKEND", "redis")
			_ = os.Setenv("RISKD_REDIS_ADDR", "redis:6379")
			_ = os.Setenv("RISKD_QUERY_WINDOW", "25")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.StoreRedis)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "redis:6379")
				convey.So(cfg.QueryWindow, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
store_backend: "memory"
alert_backend: "redis"
redis_alert_channel: "alerts:test"
query_window: 5
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RISKD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.AlertBackend, convey.ShouldEqual, config.AlertRedis)
				convey.So(cfg.RedisAlertChannel, convey.ShouldEqual, "alerts:test")
				convey.So(cfg.QueryWindow, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When env vars override the YAML file", func() {
			tmpFile := createTempConfigFile(t, `addr: ":9090"`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RISKD_CONFIG", tmpFile)
			_ = os.Setenv("RISKD_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the env value wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the config names an unknown store backend", func() {
			_ = os.Setenv("RISKD_STORE_BACKEND", "cassandra")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the postgres store has no DSN", func() {
			_ = os.Setenv("RISKD_STORE_BACKEND", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When sns alerts have no topic", func() {
			_ = os.Setenv("RISKD_ALERT_BACKEND", "sns")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the query window is not positive", func() {
			_ = os.Setenv("RISKD_QUERY_WINDOW", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"RISKD_CONFIG",
		"RISKD_ADDR",
		"RISKD_STORE_BACKEND",
		"RISKD_ALERT_BACKEND",
		"RISKD_CLASSIFIER",
		"RISKD_QUERY_WINDOW",
		"RISKD_REDIS_ADDR",
		"RISKD_REDIS_ALERT_CHANNEL",
		"RISKD_POSTGRES_DSN",
		"RISKD_SNS_TOPIC_ARN",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "riskd-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close temp config: %v", err)
	}
	return f.Name()
}
