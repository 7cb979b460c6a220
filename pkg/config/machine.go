package config

import (
	"log/slog"

	"github.com/anggasct/autofsm"
	"github.com/anggasct/autofsm/pkg/logger"
)

// Machine holds the environment-driven settings of a state machine host
type Machine struct {
	Name         string        `env:"AUTOFSM_NAME"`
	MaxChain     int           `env:"AUTOFSM_MAX_CHAIN" envDefault:"1024"`
	FaultLogSize int           `env:"AUTOFSM_FAULT_LOG_SIZE" envDefault:"64"`
	LogLevel     string        `env:"AUTOFSM_LOG_LEVEL" envDefault:"info"`
	LogFormat    logger.Format `env:"AUTOFSM_LOG_FORMAT" envDefault:"text"`
	QueueSize    int           `env:"AUTOFSM_EXECUTOR_QUEUE_SIZE" envDefault:"64"`
}

// LoggerOptions returns the logger options described by the settings.
// An unparsable level falls back to info and an unknown format to text.
func (m Machine) LoggerOptions() []logger.Option {
	level, err := logger.ParseLevel(m.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	format := m.LogFormat
	if format != logger.FormatJSON {
		format = logger.FormatText
	}

	opts := []logger.Option{
		logger.WithLevel(level),
		logger.WithFormat(format),
	}
	if m.Name != "" {
		opts = append(opts, logger.WithAttr(logger.Machine(m.Name)))
	}
	return opts
}

// MachineOptions returns the machine options described by the settings.
// The executor is left to the caller.
func (m Machine) MachineOptions(log *slog.Logger) []autofsm.Option {
	return []autofsm.Option{
		autofsm.WithLogger(log),
		autofsm.WithMachineName(m.Name),
		autofsm.WithMaxChainLength(m.MaxChain),
		autofsm.WithFaultLogSize(m.FaultLogSize),
	}
}
