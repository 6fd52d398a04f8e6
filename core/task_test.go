package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindValid(t *testing.T) {
	assert.True(t, KindTool.Valid())
	assert.True(t, KindAgent.Valid())
	assert.False(t, Kind("").Valid())
	assert.False(t, Kind("agent").Valid())
	assert.False(t, Kind("TOOL").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestTaskDuration(t *testing.T) {
	start := time.Now()

	task := Task{Status: StatusPending}
	assert.Equal(t, time.Duration(0), task.Duration())

	task.StartedAt = start
	assert.Equal(t, time.Duration(0), task.Duration())

	task.CompletedAt = start.Add(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, task.Duration())
}

func TestTaskDurationCancelled(t *testing.T) {
	// Cancelled tasks never ran, so both execution timestamps stay zero.
	task := Task{Status: StatusCancelled, CreatedAt: time.Now()}
	assert.Equal(t, time.Duration(0), task.Duration())
}
