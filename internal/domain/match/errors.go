package match

import (
	"errors"
	"fmt"
)

// ErrInvalidRule is matched by every InvalidRuleError. It marks a configuration
// defect in stored question data, not a problem with the submitted answer.
var ErrInvalidRule = errors.New("invalid match rule")

// InvalidRuleError reports a regex rule whose pattern does not compile.
type InvalidRuleError struct {
	Pattern string
	Err     error
}

// Error implements the error interface for InvalidRuleError.
func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("%s: pattern %q does not compile: %v", ErrInvalidRule, e.Pattern, e.Err)
}

// Unwrap returns the underlying regexp syntax error.
func (e *InvalidRuleError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidRule) hold for any InvalidRuleError.
func (e *InvalidRuleError) Is(target error) bool {
	return target == ErrInvalidRule
}
