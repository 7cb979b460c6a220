package autofsm

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by Start and the Add*Transition methods once the machine runs
	ErrAlreadyStarted = errors.New("state machine already started")
	// ErrNotStarted is returned when triggering a transition before Start
	ErrNotStarted = errors.New("state machine not started")
	// ErrTransitionNotFound is returned when no registered transition matches a trigger
	ErrTransitionNotFound = errors.New("transition not found")
	// ErrInvalidConfiguration is wrapped by every issue Validate reports
	ErrInvalidConfiguration = errors.New("invalid state machine configuration")
	// ErrChainLimitExceeded is reported when automatic transitions keep committing past the configured limit
	ErrChainLimitExceeded = errors.New("automatic transition chain limit exceeded")
)

// ErrorCode represents specific error conditions in the state machine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Transition is not registered on the machine
	ErrCodeTransitionNotFound
	// Machine is not in started state
	ErrCodeMachineNotStarted
	// Machine was started twice
	ErrCodeAlreadyStarted
	// Guard condition raised an error
	ErrCodeGuardFailed
	// Action execution failed
	ErrCodeActionFailed
	// Machine configuration is invalid
	ErrCodeInvalidConfiguration
	// Automatic chain ran past its limit
	ErrCodeChainLimit
)

// ConfigurationError represents machine configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string, err error) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
		Err:       err,
	}
}

// MachineError represents state machine operation errors
type MachineError struct {
	Code      ErrorCode
	Operation string
	Err       error
}

func (e *MachineError) Error() string {
	return fmt.Sprintf("machine error during %s: %v", e.Operation, e.Err)
}

func (e *MachineError) Unwrap() error {
	return e.Err
}

// NewMachineError creates a new machine error
func NewMachineError(code ErrorCode, operation string, err error) *MachineError {
	return &MachineError{
		Code:      code,
		Operation: operation,
		Err:       err,
	}
}

// GuardError wraps an error raised while evaluating a transition condition
type GuardError struct {
	From        string
	To          string
	OriginalErr error
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("condition failed [%s->%s]: %v", e.From, e.To, e.OriginalErr)
}

func (e *GuardError) Unwrap() error {
	return e.OriginalErr
}

// ActionError represents action execution errors
type ActionError struct {
	From        string
	To          string
	OriginalErr error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action failed [%s->%s]: %v", e.From, e.To, e.OriginalErr)
}

func (e *ActionError) Unwrap() error {
	return e.OriginalErr
}

// PanicError carries a value recovered from a panicking condition, action or handler
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsMachineError checks if an error is a MachineError
func IsMachineError(err error) bool {
	var e *MachineError
	return errors.As(err, &e)
}

// IsGuardError checks if an error is a GuardError
func IsGuardError(err error) bool {
	var e *GuardError
	return errors.As(err, &e)
}

// IsActionError checks if an error is an ActionError
func IsActionError(err error) bool {
	var e *ActionError
	return errors.As(err, &e)
}

// IsPanicError checks if an error is a recovered panic
func IsPanicError(err error) bool {
	var e *PanicError
	return errors.As(err, &e)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		machineErr *MachineError
		configErr  *ConfigurationError
		guardErr   *GuardError
		actionErr  *ActionError
	)
	switch {
	case errors.As(err, &machineErr):
		return machineErr.Code
	case errors.As(err, &configErr):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &guardErr):
		return ErrCodeGuardFailed
	case errors.As(err, &actionErr):
		return ErrCodeActionFailed
	case errors.Is(err, ErrChainLimitExceeded):
		return ErrCodeChainLimit
	default:
		return ErrCodeNone
	}
}
