package analyzer

import (
	"fmt"
	"slices"
	"strings"
)

// Comparison describes how two sources differ.
type Comparison struct {
	Identical  bool     `json:"identical"`
	Similarity float64  `json:"similarity"`
	FunctionsA []string `json:"functions_a"`
	FunctionsB []string `json:"functions_b"`
	OnlyInA    []string `json:"only_in_a"`
	OnlyInB    []string `json:"only_in_b"`
	Common     []string `json:"common"`
}

// Compare reports the line-level differences between a and b. Similarity is
// the Jaccard index of their sets of trimmed lines; two empty sources are
// fully similar. Both sources must parse.
func Compare(a, b Source) (*Comparison, error) {
	fa, err := functionsOf(a)
	if err != nil {
		return nil, err
	}
	fb, err := functionsOf(b)
	if err != nil {
		return nil, err
	}

	la, lb := lineSet(a.Text), lineSet(b.Text)
	c := &Comparison{
		Identical:  a.Text == b.Text,
		FunctionsA: fa,
		FunctionsB: fb,
		OnlyInA:    []string{},
		OnlyInB:    []string{},
		Common:     []string{},
	}
	for line := range la {
		if _, ok := lb[line]; ok {
			c.Common = append(c.Common, line)
		} else {
			c.OnlyInA = append(c.OnlyInA, line)
		}
	}
	for line := range lb {
		if _, ok := la[line]; !ok {
			c.OnlyInB = append(c.OnlyInB, line)
		}
	}
	slices.Sort(c.OnlyInA)
	slices.Sort(c.OnlyInB)
	slices.Sort(c.Common)

	union := len(c.OnlyInA) + len(c.OnlyInB) + len(c.Common)
	switch {
	case union == 0:
		c.Similarity = 1
	default:
		c.Similarity = float64(len(c.Common)) / float64(union)
	}
	return c, nil
}

func functionsOf(src Source) ([]string, error) {
	expr, diags := ParseSource(src.Name, src.Text)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse source of %q: %w", src.Name, diags)
	}
	fns := Inspect(expr).Functions
	if fns == nil {
		fns = []string{}
	}
	return fns, nil
}

func lineSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}
