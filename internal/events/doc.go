// Package events decouples the services that observe something worth doing in
// the background from the task machinery that does it.
//
// Services emit a TaskRequestEvent through an EventEmitter; handlers registered
// on the emitter (in practice the task package's TaskFactoryEventHandler) turn
// the event into a persisted background task.
package events
