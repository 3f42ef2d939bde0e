package blockchain

import (
	"fmt"

	"github.com/spf13/viper"
)

// Configuration keys read by ReadConfig.
const (
	KeyDifficulty  = "blockchain.difficulty"
	KeyQueueHint   = "blockchain.queue.hint"
	KeyMineGenesis = "blockchain.genesis.mineOnStart"
	KeyStatsWindow = "blockchain.stats.window"
	KeyMetricsName = "blockchain.metrics.prefix"
)

// Config holds the per-node engine settings. Difficulty is a protocol
// constant: every node of a network must use the same value.
type Config struct {
	Difficulty  Difficulty
	QueueHint   int64
	MineGenesis bool
	StatsWindow int
	MetricsName string
}

// DefaultConfig returns the settings used when no configuration is given.
func DefaultConfig() Config {
	return Config{
		Difficulty:  "000",
		QueueHint:   64,
		MineGenesis: false,
		StatsWindow: 16,
		MetricsName: "ledger - "}
}

// SetDefaults registers the default values of every key on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeyDifficulty, d.Difficulty.String())
	v.SetDefault(KeyQueueHint, d.QueueHint)
	v.SetDefault(KeyMineGenesis, d.MineGenesis)
	v.SetDefault(KeyStatsWindow, d.StatsWindow)
	v.SetDefault(KeyMetricsName, d.MetricsName)
}

// ReadConfig builds a Config from v. Keys missing in v take their default.
func ReadConfig(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	difficulty, err := ParseDifficulty(v.GetString(KeyDifficulty))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyDifficulty, err)
	}

	cfg := Config{
		Difficulty:  difficulty,
		QueueHint:   v.GetInt64(KeyQueueHint),
		MineGenesis: v.GetBool(KeyMineGenesis),
		StatsWindow: v.GetInt(KeyStatsWindow),
		MetricsName: v.GetString(KeyMetricsName)}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := ParseDifficulty(c.Difficulty.String()); err != nil {
		return fmt.Errorf("%s: %w", KeyDifficulty, err)
	}
	if c.QueueHint < 1 {
		return fmt.Errorf("%s must be positive, got %d", KeyQueueHint, c.QueueHint)
	}
	if c.StatsWindow < 1 {
		return fmt.Errorf("%s must be positive, got %d", KeyStatsWindow, c.StatsWindow)
	}
	return nil
}
