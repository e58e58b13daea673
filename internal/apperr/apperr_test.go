package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("user.email_invalid"), KindValidation},
		{"unauthorized", Unauthorized("auth.invalid_token"), KindUnauthorized},
		{"forbidden", Forbidden("user.cannot_delete_self"), KindForbidden},
		{"not_found", NotFound("user.not_found"), KindNotFound},
		{"conflict", Conflict("user.email_already_in_use"), KindConflict},
		{"internal", Internal(errors.New("boom")), KindInternal},
		{"foreign", errors.New("plain"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("use case failed: %w", NotFound("user.not_found"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestInternalPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "common.internal_error", err.Key)
}

func TestFromError(t *testing.T) {
	orig := Conflict("user.email_already_in_use")
	assert.Same(t, orig, FromError(orig))

	wrapped := FromError(errors.New("boom"))
	assert.Equal(t, KindInternal, wrapped.Kind)
}

func TestErrorArgs(t *testing.T) {
	err := NotFound("user.not_found_with_id", map[string]string{"id": "42"})
	assert.Equal(t, "42", err.Args["id"])
}
