package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable read by LoadApp.
const EnvPrefix = "FORMSTATE_"

// EnvOption adjusts how ParseEnv reads the environment.
type EnvOption func(*env.Options)

// WithPrefix reads every tagged variable as prefix+name.
func WithPrefix(prefix string) EnvOption {
	return func(o *env.Options) {
		o.Prefix = prefix
	}
}

// ParseEnv loads configuration from environment variables. Fields that have
// no variable set and no envDefault keep the value already in target.
func ParseEnv(target any, opts ...EnvOption) error {
	var o env.Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := env.ParseWithOptions(target, o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
