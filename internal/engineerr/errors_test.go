package engineerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageFormatting(t *testing.T) {
	t.Parallel()

	withCause := New(KindParseError, "bad token", fmt.Errorf("line 3"))
	assert.Equal(t, "parse-error: bad token: line 3", withCause.Error())

	withoutCause := New(KindFileNotFound, "missing template", nil)
	assert.Equal(t, "file-not-found: missing template", withoutCause.Error())
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("underlying")
	err := New(KindWriteFailed, "could not write", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestError_AsExtractsKind(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("context: %w", New(KindShapeViolation, "violated shape", nil))

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, KindShapeViolation, e.Kind)
}

func TestExitCode_Nil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitCode(nil))
}

func TestExitCode_ViolationKinds(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{
		KindShapeViolation,
		KindCustomRuleFailed,
		KindOWLCycle,
		KindFunctionalPropertyViolation,
		KindUnauthorizedModification,
	} {
		assert.Equal(t, 3, ExitCode(New(k, "x", nil)), "kind %s", k)
	}
}

func TestExitCode_ValidationKinds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ExitCode(New(KindParseError, "x", nil)))
	assert.Equal(t, 1, ExitCode(New(KindUndefinedVariable, "x", nil)))
}

func TestExitCode_NonEngineError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ExitCode(fmt.Errorf("plain error")))
}

func TestExitCode_WrappedKind(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("wrap: %w", New(KindOWLCycle, "cycle detected", nil))
	assert.Equal(t, 3, ExitCode(wrapped))
}
