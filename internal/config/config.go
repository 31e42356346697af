package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/gexcalc/internal/gex"
	"github.com/dgnsrekt/gexcalc/internal/notify"
	"github.com/dgnsrekt/gexcalc/internal/report"
)

type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
	Notify  notify.Config `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type EngineConfig struct {
	From        float64 `mapstructure:"from"`
	To          float64 `mapstructure:"to"`
	Levels      int     `mapstructure:"levels"`
	Rate        float64 `mapstructure:"rate"`
	Dividend    float64 `mapstructure:"dividend"`
	Workers     int     `mapstructure:"workers"`
	Calendar    string  `mapstructure:"calendar"`
	GammaSource string  `mapstructure:"gamma_source"`
}

type InputConfig struct {
	Directory string   `mapstructure:"directory"`
	Tickers   []string `mapstructure:"tickers"`
}

type OutputConfig struct {
	Directory string `mapstructure:"directory"`
	Pretty    bool   `mapstructure:"pretty"`
	Compress  bool   `mapstructure:"compress"`
	Overwrite bool   `mapstructure:"overwrite"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

type DaemonConfig struct {
	Hour         int    `mapstructure:"hour"`
	Minute       int    `mapstructure:"minute"`
	Timezone     string `mapstructure:"timezone"`
	StateFile    string `mapstructure:"state_file"`
	RunOnStartup bool   `mapstructure:"run_on_startup"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Level     string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	def := gex.DefaultOptions()
	v.SetDefault("engine.from", def.Profile.From)
	v.SetDefault("engine.to", def.Profile.To)
	v.SetDefault("engine.levels", def.Profile.Levels)
	v.SetDefault("engine.rate", 0.0)
	v.SetDefault("engine.dividend", 0.0)
	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.calendar", def.Calendar)
	v.SetDefault("engine.gamma_source", string(def.GammaSource))

	v.SetDefault("input.directory", "data/chains")
	v.SetDefault("input.tickers", []string{})

	v.SetDefault("output.directory", "data/gex")
	v.SetDefault("output.pretty", false)
	v.SetDefault("output.compress", false)
	v.SetDefault("output.overwrite", false)

	v.SetDefault("batch.workers", 3)

	v.SetDefault("daemon.hour", 16)
	v.SetDefault("daemon.minute", 30)
	v.SetDefault("daemon.timezone", "America/New_York")
	v.SetDefault("daemon.state_file", "data/.gexd-state")
	v.SetDefault("daemon.run_on_startup", true)

	ntfy := notify.DefaultConfig()
	v.SetDefault("notify.enabled", ntfy.Enabled)
	v.SetDefault("notify.server", ntfy.Server)
	v.SetDefault("notify.topic", "")
	v.SetDefault("notify.priority", ntfy.Priority)
	v.SetDefault("notify.tags", ntfy.Tags)
	v.SetDefault("notify.token", "")

	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// GEXCALC_ENGINE_LEVELS, GEXCALC_NOTIFY_TOPIC, ...
	v.SetEnvPrefix("GEXCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	for i, t := range cfg.Input.Tickers {
		cfg.Input.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// EngineOptions converts the engine section into gex options.
func (c *Config) EngineOptions() gex.Options {
	return gex.Options{
		Profile: gex.ProfileOptions{
			From:     c.Engine.From,
			To:       c.Engine.To,
			Levels:   c.Engine.Levels,
			Rate:     c.Engine.Rate,
			Dividend: c.Engine.Dividend,
			Workers:  c.Engine.Workers,
		},
		GammaSource: gex.GammaSource(c.Engine.GammaSource),
		Calendar:    c.Engine.Calendar,
	}
}

// ReportFormat is the on-disk format selected by output.compress.
func (c *Config) ReportFormat() report.Format {
	return reportFormat(c.Output.Compress)
}
