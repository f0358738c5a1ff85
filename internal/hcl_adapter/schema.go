package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileSchema lists the top-level blocks a scenario file may contain. Blocks
// are read through body.Content so their source order is preserved.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "capability", LabelNames: []string{"name"}},
		{Type: "invoke", LabelNames: []string{"name"}},
		{Type: "rollback", LabelNames: []string{"name"}},
		{Type: "feedback", LabelNames: []string{"note"}},
		{Type: "metric", LabelNames: []string{"key"}},
	},
}

// capabilityBlock is the body of `capability "<name>" { ... }`.
type capabilityBlock struct {
	Description *string        `hcl:"description,optional"`
	Params      hcl.Expression `hcl:"params,optional"`
	Returns     hcl.Expression `hcl:"returns"`
}

// invokeBlock is the body of `invoke "<name>" { ... }`.
type invokeBlock struct {
	Args   hcl.Expression `hcl:"args,optional"`
	Expect hcl.Expression `hcl:"expect,optional"`
	Repeat *int           `hcl:"repeat,optional"`
}

// rollbackBlock is the body of `rollback "<name>" {}`.
type rollbackBlock struct{}

// feedbackBlock is the body of `feedback "<note>" { ... }`.
type feedbackBlock struct {
	Success bool `hcl:"success"`
}

// metricBlock is the body of `metric "<key>" { ... }`.
type metricBlock struct {
	Value float64 `hcl:"value"`
}
