package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	AuthJWTSecret string `env:"AUTH_JWT_SECRET"`
	SessionCookie string `env:"SESSION_COOKIE" envDefault:"ledger_session"`

	PollIntervalMS   int  `env:"POLL_INTERVAL_MS" envDefault:"2500"`
	JoinCodeAttempts int  `env:"JOIN_CODE_ATTEMPTS" envDefault:"8"`
	MCPEnabled       bool `env:"MCP_ENABLED" envDefault:"true"`

	ShutdownTimeoutSecs int `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
