package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		legal    bool
	}{
		{StateProfiling, StateEnriching, true},
		{StateEnriching, StateAssembling, true},
		{StateAssembling, StateDone, true},
		{StateProfiling, StateFailed, true},
		{StateEnriching, StateFailed, true},
		{StateAssembling, StateFailed, true},
		{StateProfiling, StateDone, false},
		{StateDone, StateFailed, false},
		{StateFailed, StateProfiling, false},
		{StateAssembling, StateEnriching, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.legal, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateEnriching.Terminal())
}
