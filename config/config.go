package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"memory-match-server/matcherrors"
)

// Mismatch policies.
const (
	// MismatchReset only resets the combo on a mismatch.
	MismatchReset = "reset"
	// MismatchPenalty resets the combo and removes MismatchPenalty points (floored at 0).
	MismatchPenalty = "penalty"
)

// AIParams holds the parameters for one AI profile (name and behavior).
type AIParams struct {
	Name               string `json:"name"`
	DelayMinMS         int    `json:"delay_min_ms"`
	DelayMaxMS         int    `json:"delay_max_ms"`
	UseKnownPairChance int    `json:"use_known_pair_chance"` // 0-100, probability to use a memorized pair when available
	ForgetChance       int    `json:"forget_chance"`         // 0-100, probability to forget a known card on each state update
}

// BonusStep awards Points when a round is cleared in fewer than UnderMoves moves.
type BonusStep struct {
	UnderMoves int `json:"under_moves"`
	Points     int `json:"points"`
}

// Config holds all configurable game parameters.
type Config struct {
	BoardRows int    `json:"board_rows"`
	BoardCols int    `json:"board_cols"`
	Theme     string `json:"theme"`

	RevealDelayMS  int `json:"reveal_delay_ms"`
	ResolveDelayMS int `json:"resolve_delay_ms"`
	VictoryDelayMS int `json:"victory_delay_ms"`
	TickMS         int `json:"tick_ms"`

	ComboBasePoints int         `json:"combo_base_points"`
	MismatchPolicy  string      `json:"mismatch_policy"`
	MismatchPenalty int         `json:"mismatch_penalty"`
	BonusTable      []BonusStep `json:"bonus_table"`

	MaxNameLength     int `json:"max_name_length"`
	WSPort            int `json:"ws_port"`
	MaxFlipsPerSecond int `json:"max_flips_per_second"`

	NeonAuthBaseURL string `json:"neon_auth_base_url"`
	JWTSecret       string `json:"-"`
	DatabaseURL     string `json:"-"`
	SQLitePath      string `json:"sqlite_path"`

	// AIProfiles lists the bots available for demo rounds; one is chosen at random.
	AIProfiles []AIParams `json:"ai_profiles"`
}

// DefaultBonusTable is the move-count bonus applied when a round is cleared.
func DefaultBonusTable() []BonusStep {
	return []BonusStep{
		{UnderMoves: 30, Points: 500},
		{UnderMoves: 35, Points: 400},
		{UnderMoves: 40, Points: 300},
		{UnderMoves: 45, Points: 200},
		{UnderMoves: 50, Points: 100},
	}
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		BoardRows:         4,
		BoardCols:         4,
		Theme:             "classic",
		RevealDelayMS:     120,
		ResolveDelayMS:    2000,
		VictoryDelayMS:    5000,
		TickMS:            16,
		ComboBasePoints:   100,
		MismatchPolicy:    MismatchReset,
		MismatchPenalty:   25,
		BonusTable:        DefaultBonusTable(),
		MaxNameLength:     24,
		WSPort:            8080,
		MaxFlipsPerSecond: 8,
		AIProfiles: []AIParams{
			{Name: "Mnemosyne", DelayMinMS: 400, DelayMaxMS: 900, UseKnownPairChance: 90, ForgetChance: 1},
			{Name: "Thalia", DelayMinMS: 300, DelayMaxMS: 1200, UseKnownPairChance: 70, ForgetChance: 10},
		},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config.json", "tag", "config", "err", err)
		}
	}

	overrideInt(&cfg.BoardRows, "BOARD_ROWS")
	overrideInt(&cfg.BoardCols, "BOARD_COLS")
	overrideString(&cfg.Theme, "THEME")
	overrideInt(&cfg.RevealDelayMS, "REVEAL_DELAY_MS")
	overrideInt(&cfg.ResolveDelayMS, "RESOLVE_DELAY_MS")
	overrideInt(&cfg.VictoryDelayMS, "VICTORY_DELAY_MS")
	overrideInt(&cfg.TickMS, "TICK_MS")
	overrideInt(&cfg.ComboBasePoints, "COMBO_BASE_POINTS")
	overrideString(&cfg.MismatchPolicy, "MISMATCH_POLICY")
	overrideInt(&cfg.MismatchPenalty, "MISMATCH_PENALTY")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.MaxFlipsPerSecond, "MAX_FLIPS_PER_SECOND")
	overrideString(&cfg.NeonAuthBaseURL, "NEON_AUTH_BASE_URL")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.SQLitePath, "SQLITE_PATH")
	if len(cfg.AIProfiles) > 0 {
		overrideString(&cfg.AIProfiles[0].Name, "AI_NAME")
		overrideInt(&cfg.AIProfiles[0].DelayMinMS, "AI_DELAY_MIN_MS")
		overrideInt(&cfg.AIProfiles[0].DelayMaxMS, "AI_DELAY_MAX_MS")
		overrideInt(&cfg.AIProfiles[0].UseKnownPairChance, "AI_USE_KNOWN_PAIR_CHANCE")
		overrideInt(&cfg.AIProfiles[0].ForgetChance, "AI_FORGET_CHANCE")
	}

	return cfg
}

// Validate checks the parts of the configuration that cannot be defaulted away.
// Face availability is checked later against the chosen theme.
func (c *Config) Validate() error {
	if c.BoardRows <= 0 || c.BoardCols <= 0 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", matcherrors.ErrInvalidConfig, c.BoardRows, c.BoardCols)
	}
	if (c.BoardRows*c.BoardCols)%2 != 0 {
		return fmt.Errorf("%w: %w (%dx%d)", matcherrors.ErrInvalidConfig, matcherrors.ErrOddCellCount, c.BoardRows, c.BoardCols)
	}
	if c.RevealDelayMS < 0 || c.ResolveDelayMS < 0 || c.VictoryDelayMS < 0 {
		return fmt.Errorf("%w: delays must not be negative", matcherrors.ErrInvalidConfig)
	}
	if c.TickMS <= 0 {
		return fmt.Errorf("%w: tick_ms must be positive, got %d", matcherrors.ErrInvalidConfig, c.TickMS)
	}
	switch c.MismatchPolicy {
	case MismatchReset, MismatchPenalty:
	default:
		return fmt.Errorf("%w: unknown mismatch policy %q", matcherrors.ErrInvalidConfig, c.MismatchPolicy)
	}
	if c.ComboBasePoints < 0 || c.MismatchPenalty < 0 {
		return fmt.Errorf("%w: combo_base_points and mismatch_penalty must not be negative", matcherrors.ErrInvalidConfig)
	}
	if c.MaxNameLength <= 0 {
		return fmt.Errorf("%w: max_name_length must be positive, got %d", matcherrors.ErrInvalidConfig, c.MaxNameLength)
	}
	if c.MaxFlipsPerSecond <= 0 {
		return fmt.Errorf("%w: max_flips_per_second must be positive, got %d", matcherrors.ErrInvalidConfig, c.MaxFlipsPerSecond)
	}
	prev := 0
	for _, step := range c.BonusTable {
		if step.UnderMoves <= prev {
			return fmt.Errorf("%w: bonus table thresholds must be ascending", matcherrors.ErrInvalidConfig)
		}
		prev = step.UnderMoves
	}
	return nil
}

// PairCount returns the number of distinct faces a board of this size needs.
func (c *Config) PairCount() int {
	return c.BoardRows * c.BoardCols / 2
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid value", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
