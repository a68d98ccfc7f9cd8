package config

import "time"

// DefaultLogLevel is used when neither a flag, an AppOption nor
// FORMSTATE_LOG_LEVEL sets one.
const DefaultLogLevel = "info"

// App is the environment configuration shared by the formstate commands.
// Every variable is read with EnvPrefix. Command-line flags take precedence
// over these values when they are set.
type App struct {
	BaseURL     string        `env:"BASE_URL"`
	Endpoint    string        `env:"ENDPOINT" envDefault:"someapi"`
	LoadDelay   time.Duration `env:"LOAD_DELAY" envDefault:"2s"`
	Fixture     string        `env:"FIXTURE"`
	ListenAddr  string        `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel    string        `env:"LOG_LEVEL"`
	LogFormat   string        `env:"LOG_FORMAT" envDefault:"console"`
	MockFailure string        `env:"MOCK_FAILURE" envDefault:"never"`
	MockLatency time.Duration `env:"MOCK_LATENCY"`
}

// AppOption presets a value before the environment is read, so the
// environment still wins.
type AppOption func(*App)

// WithLogLevel presets the log level for commands that want a quieter or
// louder default than DefaultLogLevel.
func WithLogLevel(level string) AppOption {
	return func(a *App) {
		a.LogLevel = level
	}
}

// LoadApp parses App from the environment.
func LoadApp(opts ...AppOption) (App, error) {
	var cfg App
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := ParseEnv(&cfg, WithPrefix(EnvPrefix)); err != nil {
		return App{}, err
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg, nil
}
