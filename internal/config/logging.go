package config

import "github.com/caarlos0/env/v11"

type LogConfig struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
	Service string `env:"LOG_SERVICE" envDefault:"chip-ledger"`
	Pretty  bool   `env:"LOG_PRETTY" envDefault:"false"`

	// SampleEvery keeps one of every N log lines; 0 or 1 disables sampling.
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
