// Package events fans committed changes out to in-process subscribers.
// Handlers run asynchronously and never affect the action that emitted.
package events

import (
	"fmt"
	"sync"

	console "ndara/internal/utils/logger"
)

var log = console.New("EVENTS")

// Event names emitted after successful commits
const (
	RolePermissionsUpdated = "role.permissions_updated"
	CourseCreated          = "course.created"
	CourseSubmitted        = "course.submitted"
	CourseModerated        = "course.moderated"
	CourseDeleted          = "course.deleted"
	LectureDeleted         = "lecture.deleted"
	SubmissionGraded       = "submission.graded"
	AlertResolved          = "security.alert_resolved"
	SettingsUpdated        = "settings.updated"
	EnrollmentActivated    = "enrollment.activated"
)

type EventHandler func(interface{})

type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

// On registers a handler for an event
func (bus *EventBus) On(event string, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.handlers[event] = append(bus.handlers[event], handler)
	log.Debug("Registered handler for event: %s", event)
}

// Emit triggers an event with the given data. A nil bus drops the event.
func (bus *EventBus) Emit(event string, data interface{}) {
	if bus == nil {
		return
	}
	bus.mu.RLock()
	handlers := bus.handlers[event]
	bus.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	log.Debug("Emitting event: %s", event)

	for _, handler := range handlers {
		bus.inflight.Add(1)
		go func(h EventHandler) {
			defer bus.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					_ = log.Error("Panic in handler for %s", fmt.Errorf("panic: %v", r), event)
				}
			}()
			h(data)
		}(handler)
	}
}

// Wait blocks until every handler started so far has returned.
func (bus *EventBus) Wait() {
	if bus == nil {
		return
	}
	bus.inflight.Wait()
}
