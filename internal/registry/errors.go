package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/hotswap/internal/analyzer"
	"github.com/vk/hotswap/internal/sandbox"
)

var (
	ErrNotFound      = errors.New("capability not found")
	ErrNoHistory     = errors.New("no prior version to restore")
	ErrDuplicateName = errors.New("capability name already registered")
)

// CompileError reports a definition that failed validation or admission.
type CompileError struct {
	Name   string
	Reason string
	// Rejected is set when the admission policy refused the definition.
	Rejected bool
	Issues   []analyzer.Issue
	Cause    error
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Rejected {
		fmt.Fprintf(&b, "definition for %q rejected: %s", e.Name, e.Reason)
	} else {
		fmt.Fprintf(&b, "invalid definition for %q: %s", e.Name, e.Reason)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// ExecutionError reports a fault raised while a capability ran.
type ExecutionError struct {
	Capability string
	Version    int
	Fault      *sandbox.Fault
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("invoke %q (v%d): %v", e.Capability, e.Version, e.Fault.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Fault
}
