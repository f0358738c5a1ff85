package registry

import (
	"fmt"
	"html"
	"strings"

	"github.com/OneOfOne/xxhash"
	"github.com/microcosm-cc/bluemonday"
)

// descriptionPolicy strips all markup from descriptions. A Policy is safe for
// concurrent use once built.
var descriptionPolicy = bluemonday.StrictPolicy()

// ValidateName checks a capability name: lowercase letters, digits and the
// separators '.', '-' and '_', with no leading, trailing or doubled separator.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &CompileError{Name: name, Reason: "name is required"}
	}
	if !isValidName(name) {
		return &CompileError{Name: name, Reason: fmt.Sprintf("invalid name format %q", name)}
	}
	return nil
}

func validateDefinition(name string, def Definition) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if def.Func == nil {
		return &CompileError{Name: name, Reason: "definition has no executable function"}
	}
	return nil
}

func isValidName(id string) bool {
	if id == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(id); i++ {
		c := id[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if (i == 0 || i == len(id)-1) && isSep {
			return false
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}

// cleanDescription reduces a description to plain text.
func cleanDescription(s string) string {
	return strings.TrimSpace(html.UnescapeString(descriptionPolicy.Sanitize(s)))
}

// sourceDigest fingerprints source text so revisions can be compared cheaply.
func sourceDigest(source string) string {
	if source == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.ChecksumString64(source))
}
