package rules

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrRuleNotFound indicates the referenced rule ID is not in the registry.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrUnhealthy indicates the registry failure ratio exceeds the
	// health threshold.
	ErrUnhealthy = errors.New("rule failure ratio above threshold")
)

// InvalidRuleError indicates a rule could not be added to the registry.
type InvalidRuleError struct {
	RuleID string
	Reason string
}

// Error returns the error message.
func (e *InvalidRuleError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("invalid rule: %s", e.Reason)
	}
	return fmt.Sprintf("invalid rule %q: %s", e.RuleID, e.Reason)
}
