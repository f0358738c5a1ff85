package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// StepKind identifies the operation a scenario step performs.
type StepKind string

const (
	StepCapability StepKind = "capability"
	StepInvoke     StepKind = "invoke"
	StepRollback   StepKind = "rollback"
	StepFeedback   StepKind = "feedback"
	StepMetric     StepKind = "metric"
)

// Model is the unified representation of one or more scenario files.
type Model struct {
	Steps []*Step
	Files []string
}

// Count returns the number of steps of kind k.
func (m *Model) Count(k StepKind) int {
	n := 0
	for _, s := range m.Steps {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// Step is one operation from a scenario. Label holds the capability name for
// capability, invoke and rollback steps, the note for feedback steps and the
// key for metric steps.
type Step struct {
	Kind  StepKind
	Label string
	// Pos is "file:line" of the block, for messages.
	Pos string

	// capability
	Description   string
	Returns       hcl.Expression
	ReturnsSource string
	// Params, when set, declares the accepted arguments and their types.
	Params map[string]cty.Type

	// invoke
	Args   cty.Value
	Expect *cty.Value
	Repeat int

	// feedback
	Success bool

	// metric
	Value float64
}
