package logger

import (
	"fmt"
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Machine records the machine name under the key "machine".
func Machine(name string) slog.Attr {
	return slog.String("machine", name)
}

// State records a state under the given key, formatted with %v.
func State(key string, state any) slog.Attr {
	return slog.String(key, fmt.Sprint(state))
}

// Transition records a transition description under the key "transition".
func Transition(t fmt.Stringer) slog.Attr {
	if t == nil {
		return slog.Attr{}
	}
	return slog.String("transition", t.String())
}

// FaultID records a fault identifier under the key "fault_id".
func FaultID(id fmt.Stringer) slog.Attr {
	return slog.String("fault_id", id.String())
}
