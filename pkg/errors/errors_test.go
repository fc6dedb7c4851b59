package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/gradesync/pkg/errors"
)

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("assignment", "ZyLab 20")
		assert.Equal(t, `assignment "ZyLab 20" not found`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("lists available names", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource:  "assignment",
			ID:        "Lab 9",
			Available: []string{"ZyLab2", "Midterm"},
		}
		assert.Contains(t, err.Error(), "ZyLab2")
		assert.Contains(t, err.Error(), "Midterm")
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("publish: %w", pkgerrors.NewNotFoundError("assignment", "x"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	err := pkgerrors.NewValidationError("course_id", "", "cannot be empty")
	assert.Equal(t, "validation failed for field course_id: cannot be empty", err.Error())
	assert.True(t, pkgerrors.IsValidationError(err))

	err = &pkgerrors.ValidationError{Message: "bad"}
	assert.Equal(t, "validation failed: bad", err.Error())
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		target    error
		retryable bool
	}{
		{name: "rate limited", status: 429, target: pkgerrors.ErrRateLimited, retryable: true},
		{name: "server error", status: 500, target: pkgerrors.ErrUnavailable, retryable: true},
		{name: "bad gateway", status: 502, target: pkgerrors.ErrUnavailable, retryable: true},
		{name: "unauthorized", status: 401, target: pkgerrors.ErrUnauthorized, retryable: false},
		{name: "forbidden", status: 403, target: pkgerrors.ErrUnauthorized, retryable: false},
		{name: "not found", status: 404, target: pkgerrors.ErrNotFound, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("list students", tt.status, "body")
			assert.True(t, errors.Is(err, tt.target))
			assert.Equal(t, tt.retryable, err.Retryable())
			assert.Equal(t, tt.retryable, pkgerrors.IsRetryable(fmt.Errorf("wrap: %w", err)))
			assert.Contains(t, err.Error(), "list students")
		})
	}

	t.Run("bad request matches nothing", func(t *testing.T) {
		err := pkgerrors.NewAPIError("update submission", 400, "bad")
		assert.False(t, pkgerrors.IsRateLimited(err))
		assert.False(t, pkgerrors.IsUnavailable(err))
		assert.False(t, pkgerrors.IsUnauthorized(err))
	})

	t.Run("unwrap", func(t *testing.T) {
		base := errors.New("connection reset")
		err := pkgerrors.WrapAPI("get submission", 0, base)
		require.Error(t, err)
		assert.ErrorIs(t, err, base)
		assert.NotContains(t, err.Error(), "status")
	})
}

func TestMalformedRecordError(t *testing.T) {
	err := pkgerrors.NewMalformedRecordError(4, "no email")
	assert.Equal(t, "malformed record at line 4: no email", err.Error())
	assert.True(t, pkgerrors.IsMalformedRecord(err))

	err = pkgerrors.NewMalformedRecordError(0, "invalid student row")
	assert.Equal(t, "malformed record: invalid student row", err.Error())
}

func TestMissingColumnError(t *testing.T) {
	err := &pkgerrors.MissingColumnError{File: "roster.csv", Column: "SIS Login ID"}
	assert.Equal(t, `missing required column "SIS Login ID" in roster.csv`, err.Error())
	assert.ErrorIs(t, err, pkgerrors.ErrMissingColumn)
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
		assert.NoError(t, pkgerrors.WrapParse("csv", "x", nil))
		assert.NoError(t, pkgerrors.WrapAPI("op", 500, nil))
	})

	t.Run("WrapIO", func(t *testing.T) {
		base := errors.New("permission denied")
		err := pkgerrors.WrapIO("write", "output/unmatched_emails.csv", base)
		var ioErr *pkgerrors.IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "write", ioErr.Operation)
		assert.ErrorIs(t, err, base)
	})

	t.Run("WrapParse", func(t *testing.T) {
		err := pkgerrors.WrapParse("csv", "grades.csv", errors.New("bare quote"))
		assert.Equal(t, "parse error in csv file grades.csv: bare quote", err.Error())
	})

	t.Run("ConfigError", func(t *testing.T) {
		base := errors.New("missing")
		err := pkgerrors.NewConfigError("canvas", "access token required", base)
		assert.Equal(t, "configuration error in canvas: access token required", err.Error())
		assert.ErrorIs(t, err, base)
	})
}
