// Package task manages background job queuing, processing, and lifecycle.
// Tasks are persisted before they are queued so that work such as payment
// settlement survives application restarts, and periodic jobs such as the
// membership expiry sweep run on the same runner.
package task
