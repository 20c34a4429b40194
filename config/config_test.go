package config

import (
	"errors"
	"testing"

	"memory-match-server/matcherrors"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.BoardRows != 4 {
		t.Errorf("expected BoardRows=4, got %d", cfg.BoardRows)
	}
	if cfg.BoardCols != 4 {
		t.Errorf("expected BoardCols=4, got %d", cfg.BoardCols)
	}
	if cfg.RevealDelayMS != 120 {
		t.Errorf("expected RevealDelayMS=120, got %d", cfg.RevealDelayMS)
	}
	if cfg.ResolveDelayMS != 2000 {
		t.Errorf("expected ResolveDelayMS=2000, got %d", cfg.ResolveDelayMS)
	}
	if cfg.VictoryDelayMS != 5000 {
		t.Errorf("expected VictoryDelayMS=5000, got %d", cfg.VictoryDelayMS)
	}
	if cfg.ComboBasePoints != 100 {
		t.Errorf("expected ComboBasePoints=100, got %d", cfg.ComboBasePoints)
	}
	if cfg.MismatchPolicy != MismatchReset {
		t.Errorf("expected MismatchPolicy=%q, got %q", MismatchReset, cfg.MismatchPolicy)
	}
	if cfg.MismatchPenalty != 25 {
		t.Errorf("expected MismatchPenalty=25, got %d", cfg.MismatchPenalty)
	}
	if len(cfg.BonusTable) != 5 {
		t.Errorf("expected 5 bonus steps, got %d", len(cfg.BonusTable))
	}
	if cfg.WSPort != 8080 {
		t.Errorf("expected WSPort=8080, got %d", cfg.WSPort)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BOARD_ROWS", "6")
	t.Setenv("BOARD_COLS", "6")
	t.Setenv("MISMATCH_POLICY", "penalty")
	t.Setenv("WS_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/memory")

	cfg := Load()

	if cfg.BoardRows != 6 {
		t.Errorf("expected BoardRows=6 after env override, got %d", cfg.BoardRows)
	}
	if cfg.BoardCols != 6 {
		t.Errorf("expected BoardCols=6 after env override, got %d", cfg.BoardCols)
	}
	if cfg.MismatchPolicy != MismatchPenalty {
		t.Errorf("expected MismatchPolicy=penalty after env override, got %q", cfg.MismatchPolicy)
	}
	if cfg.WSPort != 9090 {
		t.Errorf("expected WSPort=9090 after env override, got %d", cfg.WSPort)
	}
	if cfg.DatabaseURL != "postgres://localhost/memory" {
		t.Errorf("expected DatabaseURL from env, got %q", cfg.DatabaseURL)
	}
	// Non-overridden fields should remain default
	if cfg.ResolveDelayMS != 2000 {
		t.Errorf("expected ResolveDelayMS=2000 (default), got %d", cfg.ResolveDelayMS)
	}
}

func TestLoadWithInvalidEnv(t *testing.T) {
	t.Setenv("BOARD_ROWS", "invalid")

	cfg := Load()

	if cfg.BoardRows != 4 {
		t.Errorf("expected BoardRows=4 (default) with invalid env, got %d", cfg.BoardRows)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"odd cell count", func(c *Config) { c.BoardRows, c.BoardCols = 3, 3 }, matcherrors.ErrOddCellCount},
		{"zero rows", func(c *Config) { c.BoardRows = 0 }, matcherrors.ErrInvalidConfig},
		{"negative delay", func(c *Config) { c.ResolveDelayMS = -1 }, matcherrors.ErrInvalidConfig},
		{"zero tick", func(c *Config) { c.TickMS = 0 }, matcherrors.ErrInvalidConfig},
		{"unknown policy", func(c *Config) { c.MismatchPolicy = "double" }, matcherrors.ErrInvalidConfig},
		{"negative penalty", func(c *Config) { c.MismatchPenalty = -25 }, matcherrors.ErrInvalidConfig},
		{"negative combo points", func(c *Config) { c.ComboBasePoints = -1 }, matcherrors.ErrInvalidConfig},
		{"zero name length", func(c *Config) { c.MaxNameLength = 0 }, matcherrors.ErrInvalidConfig},
		{"zero flip rate", func(c *Config) { c.MaxFlipsPerSecond = 0 }, matcherrors.ErrInvalidConfig},
		{"descending bonus", func(c *Config) {
			c.BonusTable = []BonusStep{{UnderMoves: 40, Points: 100}, {UnderMoves: 30, Points: 500}}
		}, matcherrors.ErrInvalidConfig},
	}

	for _, test := range tests {
		cfg := Defaults()
		test.mutate(cfg)
		err := cfg.Validate()
		if !errors.Is(err, test.want) {
			t.Errorf("%s: expected error wrapping %v, got %v", test.name, test.want, err)
		}
	}
}

func TestPairCount(t *testing.T) {
	cfg := Defaults()
	if got := cfg.PairCount(); got != 8 {
		t.Errorf("expected 8 pairs for 4x4, got %d", got)
	}
}
