package session

import "github.com/rs/zerolog"

// Alerter surfaces user-visible notifications. The dashboard server implements
// this with flash notices; headless consumers (CLI, tests) use LogAlerter or a
// recorder.
type Alerter interface {
	Success(title, description string)
	Error(title, description string)
	Info(title, description string)
}

// LogAlerter writes notifications to a structured log. It is the default
// Alerter for managers constructed without one.
type LogAlerter struct {
	log zerolog.Logger
}

// NewLogAlerter creates an Alerter backed by the given logger.
func NewLogAlerter(log zerolog.Logger) *LogAlerter {
	return &LogAlerter{log: log}
}

func (a *LogAlerter) Success(title, description string) {
	a.log.Info().Str("notice", "success").Str("description", description).Msg(title)
}

func (a *LogAlerter) Error(title, description string) {
	a.log.Error().Str("notice", "error").Str("description", description).Msg(title)
}

func (a *LogAlerter) Info(title, description string) {
	a.log.Info().Str("notice", "info").Str("description", description).Msg(title)
}
