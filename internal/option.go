package internal

import "github.com/starford/raido/internal/session"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	factory session.RootFactory
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRootFactory sets the component tree served to new sessions.
func WithRootFactory(factory session.RootFactory) Option {
	return func(a *application) {
		a.factory = factory
	}
}
