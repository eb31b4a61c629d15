package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorSuccessIsNil(t *testing.T) {
	assert.NoError(t, NewError(Success))
}

func TestNewErrorWrapsCode(t *testing.T) {
	err := NewError(Failure)
	require := assert.New(t)
	require.Error(err)
	require.Equal(Failure, CodeOf(err))
	require.Contains(err.Error(), "failure")
}

func TestErrorIsMatchesByCode(t *testing.T) {
	a := NewError(DuplicateResource)
	b := NewError(DuplicateResource)
	c := NewError(NotExistingResource)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestCodeOfNonSchedulerError(t *testing.T) {
	assert.Equal(t, Failure, CodeOf(errors.New("boom")))
}

func TestErrorCodeStringUnknown(t *testing.T) {
	assert.Equal(t, "(unknown error)", ErrorCode(9999).String())
}

func TestErrorCodeStringKnown(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{Success, "success"},
		{Failure, "failure"},
		{CompletedAllOperations, "completed all operations"},
		{ClientAttached, "client is already attached to the scheduler"},
		{ClientNotAttached, "client is not attached to the scheduler"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.String())
	}
}
