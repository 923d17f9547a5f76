package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictionLifeCycleTransitions(t *testing.T) {
	tests := []struct {
		status   PredictionLifeCycle
		terminal bool
		next     []PredictionLifeCycle
	}{
		{PredictionOpen, false, []PredictionLifeCycle{PredictionRetired, PredictionClosed}},
		{PredictionRetired, true, nil},
		{PredictionClosed, false, []PredictionLifeCycle{PredictionSuccessful, PredictionFailed}},
		{PredictionSuccessful, true, nil},
		{PredictionFailed, true, nil},
	}
	assert.Len(t, tests, len(AllPredictionLifeCycles))

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.True(t, tt.status.Valid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			for _, next := range AllPredictionLifeCycles {
				assert.Equal(t, contains(tt.next, next), tt.status.CanTransitionTo(next), "%s -> %s", tt.status, next)
			}
		})
	}
}

func TestUnknownLifeCycle(t *testing.T) {
	unknown := PredictionLifeCycle("pending")
	assert.False(t, unknown.Valid())
	assert.False(t, unknown.IsTerminal())
	assert.False(t, unknown.CanTransitionTo(PredictionClosed))
}

func contains(statuses []PredictionLifeCycle, status PredictionLifeCycle) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
