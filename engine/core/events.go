package core

import (
	"reflect"
	"sync"
)

// EventContext carries the payload of a fired event.
type EventContext struct {
	// Path or cache key the event refers to.
	Key string
	// Asset type bits, when the event concerns a typed asset.
	Type uint64
	// Free-form payload, e.g. the bundle that was loaded.
	Data interface{}
}

// Internal event codes. Applications should use codes beyond MAX_EVENT_CODE.
type EventCode int

const (
	// A bundle was produced by a loader (not served from cache).
	/* Context usage:
	 * Key = cache key, Type = asset type, Data = assets.Bundle
	 */
	EVENT_CODE_ASSET_LOADED EventCode = 0x01

	// A bundle was removed from the asset cache.
	/* Context usage:
	 * Key = cache key, Type = asset type
	 */
	EVENT_CODE_ASSET_EVICTED EventCode = 0x02

	// A file backing an asset changed on disk.
	/* Context usage:
	 * Key = path relative to the asset root
	 */
	EVENT_CODE_ASSET_FILE_CHANGED EventCode = 0x03

	MAX_EVENT_CODE EventCode = 0xFF
)

// Should return true if handled.
type FnOnEvent func(code EventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events to listeners registered per code.
type EventBus struct {
	mu         sync.RWMutex
	registered map[EventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return false.
 */
func (b *EventBus) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.registered[code] {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			LogWarn("event code %d: listener already registered", code)
			return false
		}
	}
	b.registered[code] = append(b.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 */
func (b *EventBus) Unregister(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			b.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func (b *EventBus) Fire(code EventCode, sender interface{}, context EventContext) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	events := append([]*registeredEvent(nil), b.registered[code]...)
	b.mu.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

// Funcs are not comparable, so registrations are matched by code pointer.
func sameCallback(a, b FnOnEvent) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
