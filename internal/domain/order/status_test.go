package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusDraft, StatusApproved, false},
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusIssued, false},
		{StatusApproved, StatusIssued, true},
		{StatusIssued, StatusReceived, true},
		{StatusReceived, StatusCompleted, true},
		{StatusCompleted, StatusReturned, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusIssued, StatusCancelled, true},
		{StatusCancelled, StatusPending, false},
		{StatusReturned, StatusCompleted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusReturned.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())

	assert.True(t, ReturnCompleted.IsTerminal())
	assert.True(t, ReturnCancelled.IsTerminal())
	assert.False(t, ReturnPending.IsTerminal())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusDraft.IsValid())
	assert.False(t, Status("shipped").IsValid())
	assert.True(t, ReturnAwaitingPickup.IsValid())
	assert.False(t, ReturnStatus("lost").IsValid())
}
