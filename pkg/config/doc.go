// Package config loads state machine host settings from the environment.
//
// Load reads an optional .env file once per process (via godotenv) and then
// parses environment variables into a struct tagged for caarlos0/env:
//
//	var cfg config.Machine
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	log := logger.New(cfg.LoggerOptions()...)
//	sm := autofsm.New(Collapsed, cfg.MachineOptions(log)...)
//
// Unlike a process-wide singleton, every call parses the environment again,
// so tests can change variables with t.Setenv between loads.
package config
