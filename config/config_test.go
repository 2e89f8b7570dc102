package config

import (
	"testing"
	"time"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"JWT_SECRET_KEY": "secret"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerPort != 8080 || cfg.CalculatorProfile != "default" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DatabaseURL != "" || cfg.HasRandomSeed || cfg.AutoPlayInterval != 0 || cfg.SeedOnEmpty {
		t.Errorf("unexpected optional settings: %+v", cfg)
	}
}

func TestFromEnvOptional(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET_KEY":     "secret",
		"SERVER_PORT":        "9090",
		"DATABASE_URL":       "postgres://localhost/league",
		"CALCULATOR_PROFILE": "realistic",
		"RANDOM_SEED":        "42",
		"AUTO_PLAY_INTERVAL": "30s",
		"SEED_ON_EMPTY":      "true",
		"R2_BUCKET_NAME":     "archive",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerPort != 9090 || cfg.CalculatorProfile != "realistic" || cfg.R2BucketName != "archive" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.HasRandomSeed || cfg.RandomSeed != 42 {
		t.Errorf("seed = %d (%v)", cfg.RandomSeed, cfg.HasRandomSeed)
	}
	if cfg.AutoPlayInterval != 30*time.Second || !cfg.SeedOnEmpty {
		t.Errorf("scheduler settings = %s, %v", cfg.AutoPlayInterval, cfg.SeedOnEmpty)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret":    {},
		"bad port":          {"JWT_SECRET_KEY": "s", "SERVER_PORT": "http"},
		"port out of range": {"JWT_SECRET_KEY": "s", "SERVER_PORT": "70000"},
		"bad seed":          {"JWT_SECRET_KEY": "s", "RANDOM_SEED": "-1"},
		"bad interval":      {"JWT_SECRET_KEY": "s", "AUTO_PLAY_INTERVAL": "often"},
		"negative interval": {"JWT_SECRET_KEY": "s", "AUTO_PLAY_INTERVAL": "-1m"},
		"bad seed flag":     {"JWT_SECRET_KEY": "s", "SEED_ON_EMPTY": "maybe"},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := FromEnv(env(values)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
