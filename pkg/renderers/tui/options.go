package tui

import "time"

// Theme captures optional message prefixes. Keep minimal to avoid coupling
// session logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithSettleTimeout bounds how long the session waits for a load or submit to
// settle. Zero waits until the context is done.
func WithSettleTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.settleTimeout = d
		}
	}
}
