package core

import "fmt"

// ConfigError reports an invalid configuration value detected before any
// simulation step executes.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// RunError wraps a failure inside the simulation loop with enough context to
// log and abort the run: which architecture and which step.
type RunError struct {
	Architecture ArchitectureKind
	Step         int
	Err          error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("simulation failed: architecture=%s step=%d: %v", e.Architecture, e.Step, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
