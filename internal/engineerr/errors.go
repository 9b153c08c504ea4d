// Package engineerr defines the engine's structured error type and the
// closed set of error kinds every component reports through. Exit-code
// mapping lives here too, so the CLI wrapper never has to know the kind
// vocabulary itself.
package engineerr

import "fmt"

// Kind is a stable, user-visible error classification. The set is closed:
// components must report one of these values, never an ad-hoc string.
type Kind string

const (
	// Input errors.
	KindParseError            Kind = "parse-error"
	KindFrontmatterError      Kind = "frontmatter-error"
	KindUndefinedVariable     Kind = "undefined-variable"
	KindForbiddenFilter       Kind = "forbidden-filter"
	KindConflictingDirectives Kind = "conflicting-directives"
	KindPathEscape            Kind = "path-escape"

	// Determinism errors.
	KindNonDeterministicFilter Kind = "non-deterministic-filter"
	KindHostDependency         Kind = "host-dependency"
	KindCycleInContext         Kind = "cycle-in-context"

	// I/O errors.
	KindFileNotFound   Kind = "file-not-found"
	KindWriteFailed    Kind = "write-failed"
	KindNoAttestation  Kind = "no-attestation"
	KindBaselineCorrupt Kind = "baseline-corrupt"

	// Validation errors.
	KindShapeViolation             Kind = "shape-violation"
	KindCustomRuleFailed           Kind = "custom-rule-failed"
	KindOWLCycle                   Kind = "owl-cycle"
	KindFunctionalPropertyViolation Kind = "functional-property-violation"

	// Drift errors.
	KindUnauthorizedModification Kind = "unauthorized-modification"
	KindRegenerationUnavailable  Kind = "regeneration-unavailable"

	// Operational.
	KindCancelled      Kind = "cancelled"
	KindTimeout        Kind = "timeout"
	KindEngineNotReady Kind = "engine-not-ready"
)

// Error is the engine's structured error type. It carries a stable Kind,
// a human-readable message, and an optional wrapped cause, enabling
// errors.As to extract the Kind anywhere up the call stack.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As to
// traverse the error chain.
func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error with the given kind, message, and optional cause.
func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// ExitCode maps an error to a process exit code (§4.10). A nil err is 0.
// The violation kinds (shape-violation, custom-rule-failed, owl-cycle,
// functional-property-violation) and unauthorized-modification are 3;
// every other error, including one that is not an *Error, is 1.
//
// ExitCode only inspects the error's Kind. Drift under mode=fail (exit 3)
// and the clean or warn-only run (exit 0) are computed by the report
// generator, which knows the active mode.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var e *Error
	if !asError(err, &e) {
		return 1
	}

	switch e.Kind {
	case KindShapeViolation, KindCustomRuleFailed, KindOWLCycle, KindFunctionalPropertyViolation,
		KindUnauthorizedModification:
		return 3
	case KindCancelled, KindTimeout, KindEngineNotReady:
		return 1
	default:
		return 1
	}
}

// asError is a local stand-in for errors.As: it follows the chain of
// single Unwrap() error methods and stores the first *Error it finds in
// target. Errors that wrap several errors (Unwrap() []error) are not
// searched.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
