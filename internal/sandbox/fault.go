package sandbox

import "fmt"

// Fault is a failure raised by a definition while it ran.
type Fault struct {
	Capability string
	Version    int
	Cause      error
	// Panic holds the recovered value when the definition panicked.
	Panic any
	Stack []byte
}

func newFault(self Self, cause error) *Fault {
	return &Fault{Capability: self.Name, Version: self.Version, Cause: cause}
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Capability == "" {
		return fmt.Sprintf("fault: %v", f.Cause)
	}
	return fmt.Sprintf("capability %q v%d faulted: %v", f.Capability, f.Version, f.Cause)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (f *Fault) Unwrap() error {
	return f.Cause
}

// Panicked reports whether the fault came from a recovered panic.
func (f *Fault) Panicked() bool {
	return f.Panic != nil
}
