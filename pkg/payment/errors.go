package payment

import "fmt"

// ValidationError means the charge request itself was malformed. No call
// was made to the gateway and nothing was charged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DeclineError means the processor rejected the charge or refund. The
// amount was not taken; the decision was the gateway's, not ours.
type DeclineError struct {
	Code   string
	Reason string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("gateway declined (%s): %s", e.Code, e.Reason)
}

// TransientError means the gateway call failed for network or timeout
// reasons. The caller may retry the whole operation.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient gateway error during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// ConfigError means the gateway is missing merchant credentials. This is
// fatal and must not be retried.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("payment gateway not configured: missing %s", e.Missing)
}
