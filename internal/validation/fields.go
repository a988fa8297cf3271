// Package validation holds the per-operation input checks run before any
// store access.
package validation

import (
	"strings"

	"pulse/internal/models"
)

// Rule is one named requirement of an operation's input.
type Rule struct {
	Name    string
	Present bool
}

// Fields lists the required inputs of one operation.
type Fields []Rule

// ID requires a non-zero identifier.
func ID(name string, v uint) Rule {
	return Rule{Name: name, Present: v != 0}
}

// Text requires a string with at least one non-space character.
func Text(name, v string) Rule {
	return Rule{Name: name, Present: strings.TrimSpace(v) != ""}
}

// AnyText requires at least one of the values to be non-blank. name
// describes the group, e.g. "content or image".
func AnyText(name string, values ...string) Rule {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return Rule{Name: name, Present: true}
		}
	}
	return Rule{Name: name}
}

// Check reports every missing field at once as an InvalidArgument error.
func (f Fields) Check() error {
	var missing []string
	for _, r := range f {
		if !r.Present {
			missing = append(missing, r.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return models.NewValidationError("Missing required fields: " + strings.Join(missing, ", "))
}
