package events

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitRunsEveryHandler(t *testing.T) {
	bus := NewEventBus()
	var calls atomic.Int32

	bus.On(CourseDeleted, func(data interface{}) {
		assert.Equal(t, "c1", data)
		calls.Add(1)
	})
	bus.On(CourseDeleted, func(interface{}) { panic("boom") })
	bus.On(CourseDeleted, func(interface{}) { calls.Add(1) })

	bus.Emit(CourseDeleted, "c1")
	bus.Emit(CourseCreated, "ignored")
	bus.Wait()

	assert.EqualValues(t, 2, calls.Load())
}

func TestNilBusIsSilent(t *testing.T) {
	var bus *EventBus
	bus.Emit(CourseDeleted, nil)
	bus.Wait()
}
