package redcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInFlightQueueFIFO(t *testing.T) {
	q := newInFlightQueue()
	a, b := newTestCommand("GET"), newTestCommand("SET")
	q.push(a)
	q.push(b)

	assert.Equal(t, 2, q.len())
	assert.Same(t, a, q.popFront())
	assert.Same(t, b, q.popFront())
	assert.Nil(t, q.popFront())
}

func TestInFlightQueueDrainAll(t *testing.T) {
	q := newInFlightQueue()
	a, b := newTestCommand("GET"), newTestCommand("SET")
	q.push(a)
	q.push(b)

	items := q.drainAll()
	assert.Equal(t, []*Command{a, b}, items)
	assert.Equal(t, 0, q.len())
}
