package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	N int `json:"n"`
}

func (testEvent) EventType() string { return "Test" }

func TestBuffer(t *testing.T) {
	b := NewBuffer(2)
	b.Emit(testEvent{N: 1})
	mark := b.Mark()
	b.Emit(testEvent{N: 2})
	b.Emit(testEvent{N: 3})
	require.Equal(t, 3, b.Len())

	b.Rollback(mark)
	require.Equal(t, []Event{testEvent{N: 1}}, b.Events())

	next := NewBuffer(0)
	b.Emit(testEvent{N: 4})
	b.Flush(next)
	assert.Zero(t, b.Len())
	assert.Equal(t, []Event{testEvent{N: 1}, testEvent{N: 4}}, next.Events())
}

func TestEncodeAll(t *testing.T) {
	envs, err := EncodeAll(7, []Event{testEvent{N: 1}, testEvent{N: 2}})
	require.NoError(t, err)
	require.Len(t, envs, 2)

	assert.Equal(t, "Test", envs[1].Type)
	assert.EqualValues(t, 7, envs[1].Height)
	assert.Equal(t, 1, envs[1].Index)
	assert.JSONEq(t, `{"n":2}`, string(envs[1].Data))
}
