package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_Add(t *testing.T) {
	stats := NewStats()
	for _, task := range []Task{
		{Status: StatusTodo, Priority: PriorityHigh, Tags: []string{"a", "b"}},
		{Status: StatusInProgress, Priority: PriorityHigh, Tags: []string{"a", "a"}},
		{Status: StatusDone, Priority: PriorityLow},
	} {
		stats.Add(task)
	}

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Todo)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Done)
	assert.Equal(t, map[Priority]int{PriorityLow: 1, PriorityMedium: 0, PriorityHigh: 2}, stats.PriorityBreakdown)
	assert.Equal(t, map[string]int{"a": 3, "b": 1}, stats.TagBreakdown)
}

func TestNewStats_AllPriorityKeys(t *testing.T) {
	stats := NewStats()
	assert.Len(t, stats.PriorityBreakdown, 3)
	for _, p := range Priorities {
		v, ok := stats.PriorityBreakdown[p]
		assert.True(t, ok)
		assert.Zero(t, v)
	}
	assert.Empty(t, stats.TagBreakdown)
}
